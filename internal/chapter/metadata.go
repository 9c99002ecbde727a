package chapter

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/fileutil"
)

// MetadataFile is the name of the metadata file inside the metadata location.
const MetadataFile = "meta_data.txt"

const (
	fileNameField = "File_Name"
	chaptersField = "chapters"
)

// Metadata describes a split source file.
type Metadata struct {
	// FileName is the base name of the source file.
	FileName string

	// Chapters is one more than the number of chunks written.
	// It is kept for format compatibility and never used to reassemble.
	Chapters int
}

// MarshalText renders the two-line metadata format.
func (m Metadata) MarshalText() ([]byte, error) {
	if strings.ContainsAny(m.FileName, "\r\n") {
		return nil, fmt.Errorf("%w: file name contains a line break", fault.ErrMetadata)
	}

	return fmt.Appendf(nil, "%s=%s\n%s=%d", fileNameField, m.FileName, chaptersField, m.Chapters), nil
}

// UnmarshalText parses the two-line metadata format.
// An unparsable chapter count is left at zero since nothing depends on it.
func (m *Metadata) UnmarshalText(data []byte) error {
	var found bool

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}

		switch key {
		case fileNameField:
			m.FileName = value
			found = true
		case chaptersField:
			if n, err := strconv.Atoi(value); err == nil {
				m.Chapters = n
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: scanning metadata: %w", fault.ErrMetadata, err)
	}

	if !found {
		return fmt.Errorf("%w: missing %s field", fault.ErrMetadata, fileNameField)
	}

	return nil
}

// SafeName returns the file name if it is a plain base name that cannot escape a directory.
func (m Metadata) SafeName() (string, error) {
	name := m.FileName

	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: unsafe file name %q", fault.ErrMetadata, name)
	}

	return name, nil
}

// WriteMetadata writes m into dir.
func WriteMetadata(dir string, m Metadata) error {
	data, err := m.MarshalText()
	if err != nil {
		return err
	}

	if err := fileutil.WriteFile(filepath.Join(dir, MetadataFile), data); err != nil {
		return fault.IO("writing metadata", err)
	}

	return nil
}

// ReadMetadata reads the metadata file from dir.
func ReadMetadata(dir string) (Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return Metadata{}, fault.IO("reading metadata", err)
	}

	var m Metadata
	if err := m.UnmarshalText(data); err != nil {
		return Metadata{}, err
	}

	return m, nil
}
