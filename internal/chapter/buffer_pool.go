package chapter

import "sync"

// bufferPool provides reusable chunk-sized buffers for splitting.
// A split itself needs one buffer, but the pool is shared by every Splitter
// in the process, so repeated and concurrent sessions reuse buffers instead of
// allocating Size bytes per split.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, Size)

		return &buf
	},
}
