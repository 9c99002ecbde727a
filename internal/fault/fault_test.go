package fault_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gochap/internal/fault"
)

func TestChunkErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("decoding session: %w",
		fault.Chunk("SECRET0000003", fmt.Errorf("%w: message authentication failed", fault.ErrCipher)))

	require.ErrorIs(t, err, fault.ErrCipher)
	assert.NotErrorIs(t, err, fault.ErrKeyFormat)

	name, ok := fault.ChunkName(err)
	require.True(t, ok)
	assert.Equal(t, "SECRET0000003", name)
	assert.Contains(t, err.Error(), `chunk "SECRET0000003"`)
}

func TestChunkNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, fault.Chunk("SECRET0000000", nil))
	assert.NoError(t, fault.IO("reading", nil))
}

func TestIOKeepsCause(t *testing.T) {
	t.Parallel()

	err := fault.IO("opening source", os.ErrNotExist)

	assert.ErrorIs(t, err, fault.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, ok := fault.ChunkName(err)
	assert.False(t, ok)
	assert.False(t, errors.Is(err, fault.ErrCipher))
}
