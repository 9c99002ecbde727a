package chapter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/fileutil"
	"github.com/idelchi/gochap/internal/logging"
	"github.com/idelchi/gochap/internal/scratch"
)

// Reassembler concatenates a plaintext chunk set into the restored file.
type Reassembler struct {
	// Chunks holds the plaintext chunk files.
	Chunks string

	// Metadata holds the metadata file naming the output.
	Metadata string

	// Restored receives the reassembled file.
	Restored string

	// Log receives per-step diagnostics.
	Log logrus.FieldLogger
}

// ReassembleResult describes a restored file.
type ReassembleResult struct {
	// Path of the restored file.
	Path string

	// Size of the restored file in bytes.
	Size int64

	// Chunks is the number of chunks concatenated.
	Chunks int

	// Metadata as read from the metadata location.
	Metadata Metadata
}

// Reassemble writes the sorted chunk set to the restored location under the
// original file name and clears the chunk location afterwards.
// The chapter count in the metadata is not consulted.
func (r *Reassembler) Reassemble() (result *ReassembleResult, err error) {
	if err := scratch.Reset(r.Restored); err != nil {
		return nil, fmt.Errorf("resetting restored location: %w", err)
	}

	meta, err := ReadMetadata(r.Metadata)
	if err != nil {
		return nil, err
	}

	name, err := meta.SafeName()
	if err != nil {
		return nil, err
	}

	chunks, err := Chunks(r.Chunks)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks in %q", fault.ErrIntake, r.Chunks)
	}

	outPath := filepath.Join(r.Restored, name)

	tc, err := fileutil.NewTempContext(outPath)
	if err != nil {
		return nil, fault.IO("preparing restored file", err)
	}

	defer tc.CleanupOnError(&err)

	for _, chunk := range chunks {
		if err = appendChunk(tc.TmpFile, filepath.Join(r.Chunks, chunk)); err != nil {
			return nil, fault.Chunk(chunk, err)
		}
	}

	size, err := tc.Commit(fileutil.OwnerReadWrite)
	if err != nil {
		return nil, fault.IO("committing restored file", err)
	}

	if err = scratch.Reset(r.Chunks); err != nil {
		return nil, fmt.Errorf("clearing chunk location: %w", err)
	}

	logging.Or(r.Log).WithFields(logrus.Fields{
		"file":   name,
		"chunks": len(chunks),
		"bytes":  size,
	}).Debug("reassembled file")

	return &ReassembleResult{
		Path:     outPath,
		Size:     size,
		Chunks:   len(chunks),
		Metadata: meta,
	}, nil
}

func appendChunk(w io.Writer, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fault.IO("opening chunk", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fault.IO("copying chunk", err)
	}

	return nil
}
