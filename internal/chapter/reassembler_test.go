package chapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gochap/internal/chapter"
	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/scratch"
	"github.com/idelchi/gochap/internal/workspace"
)

func reassembler(layout workspace.Layout) *chapter.Reassembler {
	return &chapter.Reassembler{
		Chunks:   layout.Chunks,
		Metadata: layout.Metadata,
		Restored: layout.Restored,
	}
}

func TestSplitReassembleRoundTrip(t *testing.T) {
	t.Parallel()

	layout, data := stage(t, "photo.jpg", 3*chapter.Size+17)

	_, err := splitter(layout).Split()
	require.NoError(t, err)

	result, err := reassembler(layout).Reassemble()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(layout.Restored, "photo.jpg"), result.Path)
	assert.EqualValues(t, len(data), result.Size)
	assert.Equal(t, 4, result.Chunks)

	restored, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, data, restored)

	names, err := scratch.List(layout.Chunks)
	require.NoError(t, err)
	assert.Empty(t, names, "chunk location must be cleared")
}

func TestReassembleDependsOnNameOrder(t *testing.T) {
	t.Parallel()

	layout, data := stage(t, "source.bin", 2*chapter.Size+100)

	_, err := splitter(layout).Split()
	require.NoError(t, err)

	// Move the first chunk behind the others; its content is untouched.
	require.NoError(t, os.Rename(
		filepath.Join(layout.Chunks, chapter.Name(0)),
		filepath.Join(layout.Chunks, chapter.Name(9)),
	))

	result, err := reassembler(layout).Reassemble()
	require.NoError(t, err)

	restored, err := os.ReadFile(result.Path)
	require.NoError(t, err)

	assert.Len(t, restored, len(data))
	assert.NotEqual(t, data, restored)
	assert.Equal(t, data[:chapter.Size], restored[len(restored)-chapter.Size:])
}

func TestReassembleIgnoresChapterCount(t *testing.T) {
	t.Parallel()

	layout, data := stage(t, "source.bin", chapter.Size+1)

	_, err := splitter(layout).Split()
	require.NoError(t, err)

	require.NoError(t, chapter.WriteMetadata(layout.Metadata, chapter.Metadata{FileName: "source.bin", Chapters: 1000}))

	result, err := reassembler(layout).Reassemble()
	require.NoError(t, err)

	restored, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, data, restored)
}

func TestReassembleRejectsUnsafeName(t *testing.T) {
	t.Parallel()

	layout, _ := stage(t, "source.bin", 10)

	_, err := splitter(layout).Split()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(
		filepath.Join(layout.Metadata, chapter.MetadataFile),
		[]byte("File_Name=../escape\nchapters=2"),
		0o600,
	))

	_, err = reassembler(layout).Reassemble()
	require.ErrorIs(t, err, fault.ErrMetadata)
}

func TestReassembleWithoutChunks(t *testing.T) {
	t.Parallel()

	layout := workspace.New(t.TempDir())
	require.NoError(t, layout.Prepare())
	require.NoError(t, chapter.WriteMetadata(layout.Metadata, chapter.Metadata{FileName: "x", Chapters: 1}))

	_, err := reassembler(layout).Reassemble()
	require.ErrorIs(t, err, fault.ErrIntake)
}

func TestReassembleRejectsStrayEntries(t *testing.T) {
	t.Parallel()

	layout, _ := stage(t, "source.bin", 10)

	_, err := splitter(layout).Split()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(layout.Chunks, "extra.bin"), []byte("x"), 0o600))

	_, err = reassembler(layout).Reassemble()
	require.ErrorIs(t, err, fault.ErrIntake)
}
