package encryption

// Algorithm identifies one of the four rotating ciphers.
type Algorithm int

const (
	// DoubleLayer wraps a Fernet token under layer key 1 in a second token under layer key 2.
	DoubleLayer Algorithm = iota
	// ChaCha20Poly1305 uses AEAD key A with the 12-byte nonce.
	ChaCha20Poly1305
	// AESGCM uses AES-128-GCM with AEAD key B and the 12-byte nonce.
	AESGCM
	// AESCCM uses AES-128-CCM (16-byte tag) with AEAD key C and the 13-byte nonce.
	AESCCM
)

//nolint:gochecknoglobals
var rotation = [...]Algorithm{DoubleLayer, ChaCha20Poly1305, AESGCM, AESCCM}

// ForOrdinal returns the algorithm for the chunk at ordinal.
// It depends on ordinal mod 4 only.
func ForOrdinal(ordinal int) Algorithm {
	n := len(rotation)

	return rotation[(ordinal%n+n)%n]
}

func (a Algorithm) String() string {
	switch a {
	case DoubleLayer:
		return "fernet-double-layer"
	case ChaCha20Poly1305:
		return "chacha20-poly1305"
	case AESGCM:
		return "aes-128-gcm"
	case AESCCM:
		return "aes-128-ccm"
	default:
		return "unknown"
	}
}
