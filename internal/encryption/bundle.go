package encryption

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/idelchi/gochap/internal/fault"
)

// BundleSeparator joins the serialized bundle fields.
const BundleSeparator = ":::::"

const bundleFields = 7

// KeyBundle holds every key and nonce of one encryption session.
// A single bundle is reused for all chunks of that session, so the nonces
// repeat across chunks of the same algorithm.
type KeyBundle struct {
	// Layer1 and Layer2 are the Fernet keys of the double-layer cipher.
	Layer1 *fernet.Key
	Layer2 *fernet.Key

	// ChaCha is AEAD key A (32 bytes).
	ChaCha []byte
	// GCM is AEAD key B (16 bytes).
	GCM []byte
	// CCM is AEAD key C (16 bytes).
	CCM []byte

	// Nonce12 is shared by ChaCha20-Poly1305 and AES-GCM.
	Nonce12 []byte
	// Nonce13 is used by AES-CCM.
	Nonce13 []byte
}

// NewKeyBundle generates a fresh bundle.
func NewKeyBundle() *KeyBundle {
	return &KeyBundle{
		Layer1:  randomFernetKey(),
		Layer2:  randomFernetKey(),
		ChaCha:  randomBytes(FernetKeySize),
		GCM:     randomBytes(AES128KeySize),
		CCM:     randomBytes(AES128KeySize),
		Nonce12: randomBytes(Nonce12Size),
		Nonce13: randomBytes(Nonce13Size),
	}
}

// Material returns the key and nonce algorithm a uses from the bundle.
func (b *KeyBundle) Material(a Algorithm) (key, nonce []byte) {
	switch a {
	case DoubleLayer:
		key = make([]byte, 0, 2*FernetKeySize)
		key = append(key, b.Layer1[:]...)
		key = append(key, b.Layer2[:]...)

		return key, nil
	case ChaCha20Poly1305:
		return b.ChaCha, b.Nonce12
	case AESGCM:
		return b.GCM, b.Nonce12
	case AESCCM:
		return b.CCM, b.Nonce13
	default:
		return nil, nil
	}
}

// MarshalText renders the seven base64url fields joined by BundleSeparator.
// Layer keys are stored as the base64url of their textual Fernet encoding.
func (b *KeyBundle) MarshalText() ([]byte, error) {
	if b.Layer1 == nil || b.Layer2 == nil {
		return nil, fmt.Errorf("%w: missing layer key", fault.ErrKeyFormat)
	}

	fields := [][]byte{
		[]byte(b.Layer1.Encode()),
		[]byte(b.Layer2.Encode()),
		b.ChaCha,
		b.GCM,
		b.CCM,
		b.Nonce12,
		b.Nonce13,
	}

	encoded := make([][]byte, len(fields))
	for i, field := range fields {
		encoded[i] = []byte(base64.URLEncoding.EncodeToString(field))
	}

	return bytes.Join(encoded, []byte(BundleSeparator)), nil
}

// UnmarshalText parses the serialized bundle.
// A field count other than seven is a bundle format error; undecodable
// fields or wrong lengths are key format errors.
func (b *KeyBundle) UnmarshalText(data []byte) error {
	parts := bytes.Split(data, []byte(BundleSeparator))
	if len(parts) != bundleFields {
		return fmt.Errorf("%w: %d fields, want %d", fault.ErrBundleFormat, len(parts), bundleFields)
	}

	decoded := make([][]byte, len(parts))

	for i, part := range parts {
		raw, err := decodeBase64URL(part)
		if err != nil {
			return fmt.Errorf("%w: field %d: %w", fault.ErrKeyFormat, i, err)
		}

		decoded[i] = raw
	}

	layer1, err := layerKey(decoded[0])
	if err != nil {
		return fmt.Errorf("layer key 1: %w", err)
	}

	layer2, err := layerKey(decoded[1])
	if err != nil {
		return fmt.Errorf("layer key 2: %w", err)
	}

	sizes := []struct {
		name string
		got  []byte
		want int
	}{
		{"chacha20-poly1305 key", decoded[2], FernetKeySize},
		{"aes-gcm key", decoded[3], AES128KeySize},
		{"aes-ccm key", decoded[4], AES128KeySize},
		{"12-byte nonce", decoded[5], Nonce12Size},
		{"13-byte nonce", decoded[6], Nonce13Size},
	}

	for _, s := range sizes {
		if len(s.got) != s.want {
			return fmt.Errorf("%w: %s is %d bytes, want %d", fault.ErrKeyFormat, s.name, len(s.got), s.want)
		}
	}

	*b = KeyBundle{
		Layer1:  layer1,
		Layer2:  layer2,
		ChaCha:  decoded[2],
		GCM:     decoded[3],
		CCM:     decoded[4],
		Nonce12: decoded[5],
		Nonce13: decoded[6],
	}

	return nil
}

// layerKey accepts either the textual Fernet encoding or the raw 32 key bytes.
func layerKey(field []byte) (*fernet.Key, error) {
	if len(field) == FernetKeySize {
		var key fernet.Key

		copy(key[:], field)

		return &key, nil
	}

	key, err := fernet.DecodeKey(string(field))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrKeyFormat, err)
	}

	return key, nil
}

// decodeBase64URL decodes padded or unpadded base64url.
func decodeBase64URL(data []byte) ([]byte, error) {
	trimmed := bytes.TrimRight(bytes.TrimSpace(data), "=")

	out := make([]byte, base64.RawURLEncoding.DecodedLen(len(trimmed)))

	n, err := base64.RawURLEncoding.Decode(out, trimmed)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}

	return out[:n], nil
}
