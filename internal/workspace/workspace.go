// Package workspace names the six locations a pipeline session works in.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/gochap/internal/fault"
)

// Default directory names, relative to the workspace root.
const (
	IntakeDir     = "uploads"
	ChunksDir     = "files"
	CiphertextDir = "encrypted"
	KeysDir       = "key"
	MetadataDir   = "raw_data"
	RestoredDir   = "restored_file"
)

// Layout holds the absolute or root-relative path of every role location.
type Layout struct {
	// Root is the directory all other locations live under.
	Root string

	// Intake holds the single source file awaiting a split.
	Intake string

	// Chunks holds plaintext chunks.
	Chunks string

	// Ciphertext holds encrypted chunks.
	Ciphertext string

	// Keys holds the key artifact.
	Keys string

	// Metadata holds the metadata file and the encrypted key bundle.
	Metadata string

	// Restored holds the reassembled file.
	Restored string
}

// New returns the default layout under root.
func New(root string) Layout {
	return Layout{
		Root:       root,
		Intake:     filepath.Join(root, IntakeDir),
		Chunks:     filepath.Join(root, ChunksDir),
		Ciphertext: filepath.Join(root, CiphertextDir),
		Keys:       filepath.Join(root, KeysDir),
		Metadata:   filepath.Join(root, MetadataDir),
		Restored:   filepath.Join(root, RestoredDir),
	}
}

// Temp creates a uniquely named root under parent (os.TempDir when empty)
// and returns its prepared layout.
func Temp(parent string) (Layout, error) {
	root, err := os.MkdirTemp(parent, "gochap-session-*")
	if err != nil {
		return Layout{}, fault.IO("creating session workspace", err)
	}

	layout := New(root)

	return layout, layout.Prepare()
}

// Locations returns every role location, intake first.
func (l Layout) Locations() []string {
	return []string{l.Intake, l.Chunks, l.Ciphertext, l.Keys, l.Metadata, l.Restored}
}

// Prepare creates any missing location. Existing content is left untouched.
func (l Layout) Prepare() error {
	const dirPerm = 0o700

	for _, location := range l.Locations() {
		if err := os.MkdirAll(location, dirPerm); err != nil {
			return fault.IO(fmt.Sprintf("creating %q", location), err)
		}
	}

	return nil
}

// Remove deletes the workspace root and everything below it.
func (l Layout) Remove() error {
	if err := os.RemoveAll(l.Root); err != nil {
		return fault.IO(fmt.Sprintf("removing workspace %q", l.Root), err)
	}

	return nil
}
