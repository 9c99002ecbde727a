package encryption_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gochap/internal/encryption"
	"github.com/idelchi/gochap/internal/fault"
)

func TestKeyBundleText(t *testing.T) {
	t.Parallel()

	bundle := encryption.NewKeyBundle()

	text, err := bundle.MarshalText()
	require.NoError(t, err)
	assert.Len(t, bytes.Split(text, []byte(encryption.BundleSeparator)), 7)

	var parsed encryption.KeyBundle
	require.NoError(t, parsed.UnmarshalText(text))

	assert.Equal(t, *bundle.Layer1, *parsed.Layer1)
	assert.Equal(t, *bundle.Layer2, *parsed.Layer2)
	assert.Equal(t, bundle.ChaCha, parsed.ChaCha)
	assert.Equal(t, bundle.GCM, parsed.GCM)
	assert.Equal(t, bundle.CCM, parsed.CCM)
	assert.Equal(t, bundle.Nonce12, parsed.Nonce12)
	assert.Equal(t, bundle.Nonce13, parsed.Nonce13)
}

func TestKeyBundleSizes(t *testing.T) {
	t.Parallel()

	bundle := encryption.NewKeyBundle()

	assert.Len(t, bundle.ChaCha, 32)
	assert.Len(t, bundle.GCM, 16)
	assert.Len(t, bundle.CCM, 16)
	assert.Len(t, bundle.Nonce12, 12)
	assert.Len(t, bundle.Nonce13, 13)

	other := encryption.NewKeyBundle()
	assert.NotEqual(t, bundle.ChaCha, other.ChaCha)
	assert.NotEqual(t, *bundle.Layer1, *other.Layer1)
}

func TestKeyBundleUnmarshalErrors(t *testing.T) {
	t.Parallel()

	valid, err := encryption.NewKeyBundle().MarshalText()
	require.NoError(t, err)

	fields := strings.Split(string(valid), encryption.BundleSeparator)

	tests := []struct {
		name string
		text string
		want error
	}{
		{"six fields", strings.Join(fields[:6], encryption.BundleSeparator), fault.ErrBundleFormat},
		{"eight fields", strings.Join(append(fields, fields[0]), encryption.BundleSeparator), fault.ErrBundleFormat},
		{"empty", "", fault.ErrBundleFormat},
		{"not base64", strings.Join(append([]string{"!!!"}, fields[1:]...), encryption.BundleSeparator), fault.ErrKeyFormat},
		{"short nonce", strings.Join(append(append([]string{}, fields[:6]...), "AAAA"), encryption.BundleSeparator), fault.ErrKeyFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var bundle encryption.KeyBundle
			require.ErrorIs(t, bundle.UnmarshalText([]byte(tc.text)), tc.want)
		})
	}
}

func TestKeyBundleAcceptsUnpaddedFields(t *testing.T) {
	t.Parallel()

	valid, err := encryption.NewKeyBundle().MarshalText()
	require.NoError(t, err)

	var bundle encryption.KeyBundle
	require.NoError(t, bundle.UnmarshalText(bytes.ReplaceAll(valid, []byte("="), nil)))
}
