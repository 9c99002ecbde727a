package encryption

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fernet/fernet-go"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/gochap/internal/chapter"
	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/fileutil"
	"github.com/idelchi/gochap/internal/logging"
	"github.com/idelchi/gochap/internal/scratch"
)

const (
	// SidecarFile is the name of the encrypted key bundle in the metadata location.
	SidecarFile = "store_in_me.enc"

	// DefaultKeyName is the default key artifact file name.
	DefaultKeyName = "session_key.pem"
)

// Encoder encrypts a plaintext chunk set with the rotating ciphers.
type Encoder struct {
	// Chunks holds the plaintext chunks; it is cleared once encoding succeeds.
	Chunks string

	// Ciphertext receives the encrypted chunks under their plaintext names.
	Ciphertext string

	// Keys receives the key artifact.
	Keys string

	// Metadata receives the sidecar bundle.
	Metadata string

	// KeyName is the key artifact file name, DefaultKeyName when empty.
	KeyName string

	// Legacy writes the bare key text instead of the tagged artifact.
	Legacy bool

	// Log receives per-chunk diagnostics.
	Log logrus.FieldLogger
}

// Encode runs one encryption session: fresh keys, every chunk sealed in
// ordinal order, then the sidecar bundle and the key artifact.
func (e *Encoder) Encode() (*EncodeResult, error) {
	log := logging.Or(e.Log)

	for _, location := range []string{e.Keys, e.Ciphertext} {
		if err := scratch.Reset(location); err != nil {
			return nil, fmt.Errorf("resetting %q: %w", location, err)
		}
	}

	bundle := NewKeyBundle()
	outer := GenerateOuterKey()

	names, err := chapter.Chunks(e.Chunks)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no chunks in %q", fault.ErrIntake, e.Chunks)
	}

	result := &EncodeResult{PerAlgorithm: make(map[Algorithm]int)}

	for ordinal, name := range names {
		algorithm := ForOrdinal(ordinal)

		plaintext, err := os.ReadFile(filepath.Join(e.Chunks, name))
		if err != nil {
			return nil, fault.Chunk(name, fault.IO("reading chunk", err))
		}

		ciphertext, err := Seal(algorithm, bundle, plaintext)
		if err != nil {
			return nil, fault.Chunk(name, err)
		}

		if err := os.WriteFile(filepath.Join(e.Ciphertext, name), ciphertext, fileutil.OwnerReadWrite); err != nil {
			return nil, fault.Chunk(name, fault.IO("writing ciphertext", err))
		}

		result.Chunks++
		result.Bytes += int64(len(ciphertext))
		result.PerAlgorithm[algorithm]++

		log.WithFields(logrus.Fields{
			"chunk":     name,
			"algorithm": algorithm,
			"bytes":     len(ciphertext),
		}).Debug("sealed chunk")
	}

	if result.Sidecar, err = e.writeSidecar(bundle, outer); err != nil {
		return nil, err
	}

	keyName := e.KeyName
	if keyName == "" {
		keyName = DefaultKeyName
	}

	result.KeyArtifact = filepath.Join(e.Keys, keyName)

	if err := fileutil.WriteFile(result.KeyArtifact, EncodeKeyArtifact(outer, !e.Legacy)); err != nil {
		return nil, fault.IO("writing key artifact", err)
	}

	if err := scratch.Reset(e.Chunks); err != nil {
		return nil, fmt.Errorf("clearing plaintext chunks: %w", err)
	}

	log.WithFields(logrus.Fields{
		"chunks": result.Chunks,
		"bytes":  result.Bytes,
		"key":    result.KeyArtifact,
	}).Debug("encoded session")

	return result, nil
}

func (e *Encoder) writeSidecar(bundle *KeyBundle, outer *fernet.Key) (string, error) {
	serialized, err := bundle.MarshalText()
	if err != nil {
		return "", err
	}

	sealed, err := fernet.EncryptAndSign(serialized, outer)
	if err != nil {
		return "", fault.Chunk(SidecarFile, fmt.Errorf("%w: %w", fault.ErrCipher, err))
	}

	path := filepath.Join(e.Metadata, SidecarFile)

	if err := os.MkdirAll(e.Metadata, 0o700); err != nil {
		return "", fault.IO("creating metadata location", err)
	}

	if err := fileutil.WriteFile(path, sealed); err != nil {
		return "", fault.IO("writing sidecar", err)
	}

	return path, nil
}

// Seal encrypts one chunk with algorithm a using the bundle's material.
func Seal(a Algorithm, bundle *KeyBundle, plaintext []byte) ([]byte, error) {
	c := a.Cipher()
	if c == nil {
		return nil, fmt.Errorf("%w: unknown algorithm %d", fault.ErrCipher, a)
	}

	key, nonce := bundle.Material(a)

	ciphertext, err := c.Seal(key, nonce, AssociatedData, plaintext)
	if err != nil {
		return nil, fmt.Errorf("sealing with %s: %w", a, err)
	}

	return ciphertext, nil
}

// Open decrypts one chunk with algorithm a using the bundle's material.
func Open(a Algorithm, bundle *KeyBundle, ciphertext []byte) ([]byte, error) {
	c := a.Cipher()
	if c == nil {
		return nil, fmt.Errorf("%w: unknown algorithm %d", fault.ErrCipher, a)
	}

	key, nonce := bundle.Material(a)

	plaintext, err := c.Open(key, nonce, AssociatedData, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("opening with %s: %w", a, err)
	}

	return plaintext, nil
}
