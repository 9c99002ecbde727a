package chapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/scratch"
)

const (
	// Size is the maximum payload of a single chunk.
	Size = 32 * 1024

	// Prefix starts every chunk file name.
	Prefix = "SECRET"

	ordinalDigits = 7
)

// Name returns the on-disk identifier of the chunk with the given ordinal.
func Name(ordinal int) string {
	return fmt.Sprintf("%s%0*d", Prefix, ordinalDigits, ordinal)
}

// Ordinal parses the ordinal back out of a chunk identifier.
func Ordinal(name string) (int, error) {
	digits, ok := strings.CutPrefix(name, Prefix)
	if !ok || len(digits) != ordinalDigits {
		return 0, fmt.Errorf("not a chunk name: %q", name)
	}

	ordinal, err := strconv.Atoi(digits)
	if err != nil || Name(ordinal) != name {
		return 0, fmt.Errorf("not a chunk name: %q", name)
	}

	return ordinal, nil
}

// Chunks returns the chunk identifiers in location in ordinal order.
// Any other entry is an intake error.
func Chunks(location string) ([]string, error) {
	names, err := scratch.Sorted(location)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if _, err := Ordinal(name); err != nil {
			return nil, fmt.Errorf("%w: unexpected entry in %q: %w", fault.ErrIntake, location, err)
		}
	}

	return names, nil
}
