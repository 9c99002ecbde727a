// Package fault defines the error taxonomy shared by the chunking and
// encryption pipeline.
//
// Components return one of the sentinel errors wrapped with context, so callers
// classify failures with errors.Is. Failures bound to a single chunk (or to the
// sidecar bundle) are additionally wrapped in a ChunkError.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrIntake is returned when the intake location holds no usable source file.
	ErrIntake = errors.New("intake error")
	// ErrKeyFormat is returned for key material with the wrong length or encoding.
	ErrKeyFormat = errors.New("key format error")
	// ErrBundleFormat is returned when a decrypted key bundle does not have seven fields.
	ErrBundleFormat = errors.New("bundle format error")
	// ErrCipher is returned when authentication fails or ciphertext is corrupt.
	ErrCipher = errors.New("cipher error")
	// ErrMetadata is returned when the metadata file is missing fields or names an unsafe file.
	ErrMetadata = errors.New("metadata error")
	// ErrIO is returned when a filesystem operation fails.
	ErrIO = errors.New("io error")
)

// ChunkError scopes a failure to one chunk identifier.
type ChunkError struct {
	// Chunk is the on-disk identifier of the failing chunk.
	Chunk string

	// Err is the underlying failure, usually wrapping ErrCipher.
	Err error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %q: %v", e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Chunk wraps err with the chunk identifier it belongs to.
func Chunk(name string, err error) error {
	if err == nil {
		return nil
	}

	return &ChunkError{Chunk: name, Err: err}
}

// IO wraps a filesystem failure with ErrIO and a short description of the step.
func IO(step string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %s: %w", ErrIO, step, err)
}

// ChunkName returns the chunk identifier carried by err, if any.
func ChunkName(err error) (string, bool) {
	var chunkErr *ChunkError
	if errors.As(err, &chunkErr) {
		return chunkErr.Chunk, true
	}

	return "", false
}
