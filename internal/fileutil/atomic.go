// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the permission every artifact is written with.
const OwnerReadWrite = 0o600

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	TmpFile *os.File
	TmpName string
	OutPath string
}

// NewTempContext creates a temp file next to outPath for atomic writing.
// Caller must defer CleanupOnError.
func NewTempContext(outPath string) (*TempContext, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		OutPath: outPath,
	}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec,errcheck // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec,errcheck // best-effort cleanup
	}
}

// Commit sets permissions, closes the temp file and renames it onto OutPath.
// It returns the size of the committed file.
func (tc *TempContext) Commit(perm os.FileMode) (int64, error) {
	if err := os.Chmod(tc.TmpName, perm); err != nil {
		return 0, fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, tc.OutPath); err != nil {
		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	info, err := os.Stat(tc.OutPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", tc.OutPath, err)
	}

	return info.Size(), nil
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) (err error) {
	tc, err := NewTempContext(path)
	if err != nil {
		return err
	}

	defer tc.CleanupOnError(&err)

	if _, err = tc.TmpFile.Write(data); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	_, err = tc.Commit(OwnerReadWrite)

	return err
}

// CopyFile atomically copies src to dst and returns the number of bytes copied.
func CopyFile(src, dst string) (size int64, err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return 0, fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	tc, err := NewTempContext(dst)
	if err != nil {
		return 0, err
	}

	defer tc.CleanupOnError(&err)

	if _, err = io.Copy(tc.TmpFile, in); err != nil {
		return 0, fmt.Errorf("copying %q: %w", src, err)
	}

	return tc.Commit(OwnerReadWrite)
}
