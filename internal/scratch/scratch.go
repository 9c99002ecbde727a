// Package scratch manages the working directories a session writes into.
//
// All operations are idempotent: resetting an absent location creates it,
// resetting an empty one is a no-op.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/idelchi/gochap/internal/fault"
)

const dirPerm = 0o700

// Reset ensures location exists and contains no entries.
// Files and subdirectories are removed recursively.
func Reset(location string) error {
	entries, err := os.ReadDir(location)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(location, dirPerm); err != nil {
			return fault.IO(fmt.Sprintf("creating %q", location), err)
		}

		return nil
	}

	if err != nil {
		return fault.IO(fmt.Sprintf("reading %q", location), err)
	}

	for _, entry := range entries {
		path := filepath.Join(location, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fault.IO(fmt.Sprintf("removing %q", path), err)
		}
	}

	return nil
}

// List returns the raw entry names of location.
// The order is unspecified; callers that depend on ordinals use Sorted.
func List(location string) ([]string, error) {
	dir, err := os.Open(filepath.Clean(location))
	if err != nil {
		return nil, fault.IO(fmt.Sprintf("opening %q", location), err)
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, fault.IO(fmt.Sprintf("listing %q", location), err)
	}

	return names, nil
}

// Sorted returns the entry names of location in ascending byte order.
func Sorted(location string) ([]string, error) {
	names, err := List(location)
	if err != nil {
		return nil, err
	}

	sort.Strings(names)

	return names, nil
}

// Filter returns the names not matched by ignore, keeping their order.
// A nil ignore keeps every name.
func Filter(names []string, ignore *Ignore) []string {
	if ignore == nil {
		return names
	}

	kept := names[:0:0]

	for _, name := range names {
		if !ignore.Match(name) {
			kept = append(kept, name)
		}
	}

	return kept
}
