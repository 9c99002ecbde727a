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

// Decoder reverses an Encoder session.
type Decoder struct {
	// Ciphertext holds the encrypted chunks.
	Ciphertext string

	// Chunks receives the plaintext chunks.
	Chunks string

	// Metadata holds the sidecar bundle.
	Metadata string

	// Log receives per-chunk diagnostics.
	Log logrus.FieldLogger
}

// OpenBundle recovers the key bundle from the sidecar using the key artifact content.
func (d *Decoder) OpenBundle(keyArtifact []byte) (*KeyBundle, error) {
	outer, err := ParseKeyArtifact(keyArtifact)
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(filepath.Join(d.Metadata, SidecarFile))
	if err != nil {
		return nil, fault.IO("reading sidecar", err)
	}

	if err := canonicalToken(sealed); err != nil {
		return nil, fault.Chunk(SidecarFile, err)
	}

	serialized := fernet.VerifyAndDecrypt(sealed, noTTL, []*fernet.Key{outer})
	if serialized == nil {
		return nil, fault.Chunk(SidecarFile, fmt.Errorf("%w: %w", fault.ErrCipher, errAuthentication))
	}

	var bundle KeyBundle
	if err := bundle.UnmarshalText(serialized); err != nil {
		return nil, fmt.Errorf("parsing key bundle: %w", err)
	}

	return &bundle, nil
}

// Decode decrypts every ciphertext chunk in ordinal order into the chunk
// location. The first failure aborts the session and clears the plaintext
// written so far.
func (d *Decoder) Decode(keyArtifact []byte) (*DecodeResult, error) {
	bundle, err := d.OpenBundle(keyArtifact)
	if err != nil {
		return nil, err
	}

	names, err := chapter.Chunks(d.Ciphertext)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no ciphertext chunks in %q", fault.ErrIntake, d.Ciphertext)
	}

	if err := scratch.Reset(d.Chunks); err != nil {
		return nil, fmt.Errorf("resetting chunk location: %w", err)
	}

	result, err := d.decodeAll(bundle, names)
	if err != nil {
		if resetErr := scratch.Reset(d.Chunks); resetErr != nil {
			logging.Or(d.Log).WithError(resetErr).Warn("discarding partial plaintext")
		}

		return nil, err
	}

	return result, nil
}

// DecodeFile reads the key artifact at path and runs Decode.
func (d *Decoder) DecodeFile(path string) (*DecodeResult, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrKeyFormat, fault.IO("reading key artifact", err))
	}

	return d.Decode(raw)
}

func (d *Decoder) decodeAll(bundle *KeyBundle, names []string) (*DecodeResult, error) {
	log := logging.Or(d.Log)

	var result DecodeResult

	for ordinal, name := range names {
		algorithm := ForOrdinal(ordinal)

		ciphertext, err := os.ReadFile(filepath.Join(d.Ciphertext, name))
		if err != nil {
			return nil, fault.Chunk(name, fault.IO("reading ciphertext", err))
		}

		plaintext, err := Open(algorithm, bundle, ciphertext)
		if err != nil {
			return nil, fault.Chunk(name, err)
		}

		if err := os.WriteFile(filepath.Join(d.Chunks, name), plaintext, fileutil.OwnerReadWrite); err != nil {
			return nil, fault.Chunk(name, fault.IO("writing plaintext", err))
		}

		result.Chunks++
		result.Bytes += int64(len(plaintext))

		log.WithFields(logrus.Fields{
			"chunk":     name,
			"algorithm": algorithm,
			"bytes":     len(plaintext),
		}).Debug("opened chunk")
	}

	return &result, nil
}
