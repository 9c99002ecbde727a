package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/pion/dtls/v2/pkg/crypto/ccm"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/idelchi/gochap/internal/fault"
)

// AssociatedData is the fixed AAD bound into every single-layer AEAD chunk.
// It carries nothing about the session, file or ordinal.
//
//nolint:gochecknoglobals
var AssociatedData = []byte("authenticated but unencrypted data")

const (
	// FernetKeySize is the size of a raw Fernet key.
	FernetKeySize = 32
	// AES128KeySize is the key size used for AES-GCM and AES-CCM.
	AES128KeySize = 16
	// Nonce12Size is the nonce shared by ChaCha20-Poly1305 and AES-GCM.
	Nonce12Size = 12
	// Nonce13Size is the nonce used by AES-CCM.
	Nonce13Size = 13

	ccmTagSize = 16

	// noTTL disables the token age check; chunks carry no expiry.
	noTTL = time.Duration(-1)
)

var errAuthentication = errors.New("message authentication failed")

// Cipher is the capability every algorithm exposes.
// Algorithms that do not use a nonce or associated data ignore them.
type Cipher interface {
	Seal(key, nonce, aad, plaintext []byte) ([]byte, error)
	Open(key, nonce, aad, ciphertext []byte) ([]byte, error)
}

// Cipher returns the implementation of a.
func (a Algorithm) Cipher() Cipher {
	switch a {
	case DoubleLayer:
		return doubleFernet{}
	case ChaCha20Poly1305:
		return aeadCipher{keySize: chacha20poly1305.KeySize, nonceSize: chacha20poly1305.NonceSize, build: chacha20poly1305.New}
	case AESGCM:
		return aeadCipher{keySize: AES128KeySize, nonceSize: Nonce12Size, build: newGCM}
	case AESCCM:
		return aeadCipher{keySize: AES128KeySize, nonceSize: Nonce13Size, build: newCCM}
	default:
		return nil
	}
}

type aeadCipher struct {
	keySize   int
	nonceSize int
	build     func(key []byte) (cipher.AEAD, error)
}

func (c aeadCipher) aead(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != c.keySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", fault.ErrKeyFormat, len(key), c.keySize)
	}

	if len(nonce) != c.nonceSize {
		return nil, fmt.Errorf("%w: nonce is %d bytes, want %d", fault.ErrKeyFormat, len(nonce), c.nonceSize)
	}

	aead, err := c.build(key)
	if err != nil {
		return nil, fmt.Errorf("%w: creating cipher: %w", fault.ErrKeyFormat, err)
	}

	return aead, nil
}

func (c aeadCipher) Seal(key, nonce, aad, plaintext []byte) ([]byte, error) {
	aead, err := c.aead(key, nonce)
	if err != nil {
		return nil, err
	}

	return aead.Seal(nil, nonce, plaintext, aad), nil
}

func (c aeadCipher) Open(key, nonce, aad, ciphertext []byte) ([]byte, error) {
	aead, err := c.aead(key, nonce)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrCipher, errAuthentication)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func newCCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := ccm.NewCCM(block, ccmTagSize, Nonce13Size)
	if err != nil {
		return nil, err
	}

	return aead, nil
}

// doubleFernet takes both layer keys concatenated as its key.
type doubleFernet struct{}

func (doubleFernet) keys(key []byte) (*fernet.Key, *fernet.Key, error) {
	if len(key) != 2*FernetKeySize {
		return nil, nil, fmt.Errorf("%w: layer keys are %d bytes, want %d", fault.ErrKeyFormat, len(key), 2*FernetKeySize)
	}

	var first, second fernet.Key

	copy(first[:], key[:FernetKeySize])
	copy(second[:], key[FernetKeySize:])

	return &first, &second, nil
}

func (d doubleFernet) Seal(key, _, _, plaintext []byte) ([]byte, error) {
	first, second, err := d.keys(key)
	if err != nil {
		return nil, err
	}

	inner, err := fernet.EncryptAndSign(plaintext, first)
	if err != nil {
		return nil, fmt.Errorf("%w: inner layer: %w", fault.ErrCipher, err)
	}

	outer, err := fernet.EncryptAndSign(inner, second)
	if err != nil {
		return nil, fmt.Errorf("%w: outer layer: %w", fault.ErrCipher, err)
	}

	return outer, nil
}

// Open peels both layers. A token that does not verify under layer key 2 is
// tried as a single-layer token under either key, which is what a MultiFernet
// encoder over the same two keys produces. Once layer key 2 has authenticated
// the outer token, content that is not a layer key 1 token is that
// single-layer plaintext.
func (d doubleFernet) Open(key, _, _, ciphertext []byte) ([]byte, error) {
	first, second, err := d.keys(key)
	if err != nil {
		return nil, err
	}

	if err := canonicalToken(ciphertext); err != nil {
		return nil, err
	}

	if inner := fernet.VerifyAndDecrypt(ciphertext, noTTL, []*fernet.Key{second}); inner != nil {
		plaintext := fernet.VerifyAndDecrypt(inner, noTTL, []*fernet.Key{first})
		if plaintext == nil {
			return inner, nil
		}

		if err := canonicalToken(inner); err != nil {
			return nil, fmt.Errorf("inner layer: %w", err)
		}

		return plaintext, nil
	}

	if plaintext := fernet.VerifyAndDecrypt(ciphertext, noTTL, []*fernet.Key{first, second}); plaintext != nil {
		return plaintext, nil
	}

	return nil, fmt.Errorf("%w: %w", fault.ErrCipher, errAuthentication)
}

// canonicalToken rejects token text that is not the exact padded base64url
// encoding of its bytes. fernet-go ignores the unused low bits of the last
// character, so two texts would otherwise verify as the same token.
func canonicalToken(token []byte) error {
	decoded, err := base64.URLEncoding.Strict().DecodeString(string(token))
	if err != nil || base64.URLEncoding.EncodeToString(decoded) != string(token) {
		return fmt.Errorf("%w: token is not canonical base64url", fault.ErrCipher)
	}

	return nil
}
