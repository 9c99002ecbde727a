package chapter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/logging"
	"github.com/idelchi/gochap/internal/scratch"
)

// Splitter breaks the single file found in an intake location into chunks.
type Splitter struct {
	// Intake is expected to hold exactly one source file.
	Intake string

	// Chunks receives the plaintext chunk files.
	Chunks string

	// Metadata receives the metadata file.
	Metadata string

	// Ignore skips matching intake entries.
	Ignore *scratch.Ignore

	// Strict turns an intake with more than one entry into an error
	// instead of splitting the first one.
	Strict bool

	// Log receives per-step diagnostics.
	Log logrus.FieldLogger
}

// SplitResult describes the chunk set produced by a split.
type SplitResult struct {
	// Source is the path of the file that was split.
	Source string

	// Metadata is what was written to the metadata location.
	Metadata Metadata

	// Chunks lists the chunk identifiers in ordinal order.
	Chunks []string

	// Sizes holds the payload size of each chunk, in ordinal order.
	Sizes []int

	// Bytes is the total number of source bytes.
	Bytes int64
}

// Source resolves the intake entry to split.
func (s *Splitter) Source() (string, error) {
	log := logging.Or(s.Log)

	names, err := scratch.Sorted(s.Intake)
	if err != nil {
		return "", fmt.Errorf("%w: %w", fault.ErrIntake, err)
	}

	names = scratch.Filter(names, s.Ignore)

	switch {
	case len(names) == 0:
		return "", fmt.Errorf("%w: no source file in %q", fault.ErrIntake, s.Intake)
	case len(names) > 1 && s.Strict:
		return "", fmt.Errorf("%w: %d entries in %q, expected one", fault.ErrIntake, len(names), s.Intake)
	case len(names) > 1:
		log.WithField("entries", len(names)).Warnf("intake holds more than one entry, splitting %q", names[0])
	}

	return filepath.Join(s.Intake, names[0]), nil
}

// Split resets the chunk and metadata locations and splits the intake file.
func (s *Splitter) Split() (*SplitResult, error) {
	source, err := s.Source()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrIntake, fault.IO("stat source", err))
	}

	switch {
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("%w: %q is not a regular file", fault.ErrIntake, source)
	case info.Size() == 0:
		return nil, fmt.Errorf("%w: %q is empty", fault.ErrIntake, source)
	}

	if err := scratch.Reset(s.Chunks); err != nil {
		return nil, fmt.Errorf("resetting chunk location: %w", err)
	}

	if err := scratch.Reset(s.Metadata); err != nil {
		return nil, fmt.Errorf("resetting metadata location: %w", err)
	}

	src, err := os.Open(filepath.Clean(source))
	if err != nil {
		return nil, fault.IO("opening source", err)
	}
	defer src.Close()

	result, err := s.split(src)
	if err != nil {
		return nil, err
	}

	result.Source = source
	result.Metadata = Metadata{
		FileName: filepath.Base(source),
		Chapters: len(result.Chunks) + 1,
	}

	if err := WriteMetadata(s.Metadata, result.Metadata); err != nil {
		return nil, err
	}

	logging.Or(s.Log).WithFields(logrus.Fields{
		"file":   result.Metadata.FileName,
		"chunks": len(result.Chunks),
		"bytes":  result.Bytes,
	}).Debug("split source")

	return result, nil
}

// split streams r into chunk files. After each chunk one byte is read ahead:
// EOF there ends the set, so an exact multiple of Size never yields an empty
// trailing chunk. The carried byte counts toward the next chunk's Size.
func (s *Splitter) split(r io.Reader) (*SplitResult, error) {
	bufp, ok := bufferPool.Get().(*[]byte)
	if !ok {
		return nil, errors.New("invalid buffer type from pool")
	}
	defer bufferPool.Put(bufp)

	buf := *bufp

	var (
		result    SplitResult
		lookahead [1]byte
		carried   int
	)

	for ordinal := 0; ; ordinal++ {
		if carried > 0 {
			buf[0] = lookahead[0]
		}

		n, err := io.ReadFull(r, buf[carried:Size])
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fault.IO("reading source", err)
		}

		payload := buf[:carried+n]
		name := Name(ordinal)

		if err := os.WriteFile(filepath.Join(s.Chunks, name), payload, chunkPerm); err != nil {
			return nil, fault.IO(fmt.Sprintf("writing chunk %q", name), err)
		}

		result.Chunks = append(result.Chunks, name)
		result.Sizes = append(result.Sizes, len(payload))
		result.Bytes += int64(len(payload))

		k, err := io.ReadFull(r, lookahead[:])
		if k == 0 {
			if errors.Is(err, io.EOF) {
				return &result, nil
			}

			return nil, fault.IO("reading source", err)
		}

		carried = 1
	}
}

const chunkPerm = 0o600
