package encryption

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/idelchi/gochap/internal/fault"
)

const (
	keyArtifactTag     = "gochap-key"
	keyArtifactVersion = "v1"

	// legacyPEMMarker is passed through untouched by the legacy normalizer.
	legacyPEMMarker = "-----BEGIN"
)

// GenerateOuterKey returns a fresh outer key for one session.
func GenerateOuterKey() *fernet.Key {
	return randomFernetKey()
}

// EncodeKeyArtifact renders the key artifact file content.
// Tagged artifacts carry an explicit encoding tag and version; legacy
// artifacts are the bare base64url key text.
func EncodeKeyArtifact(key *fernet.Key, tagged bool) []byte {
	if !tagged {
		return []byte(key.Encode())
	}

	return fmt.Appendf(nil, "%s:%s:%s\n", keyArtifactTag, keyArtifactVersion, key.Encode())
}

// ParseKeyArtifact returns the outer key stored in a key artifact.
func ParseKeyArtifact(raw []byte) (*fernet.Key, error) {
	canonical, err := NormalizeKey(raw)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.URLEncoding.DecodeString(string(canonical))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrKeyFormat, err)
	}

	var key fernet.Key

	copy(key[:], decoded)

	return &key, nil
}

// NormalizeKey returns the canonical base64url text of the key in raw.
//
// Tagged artifacts are decoded strictly. Anything else goes through the
// legacy chain: text starting with a PEM marker is kept, base64url text is
// decoded and re-encoded, and bytes that are not base64url are encoded as they
// are. The result must decode to exactly 32 bytes. Normalizing a canonical key
// returns it unchanged.
func NormalizeKey(raw []byte) ([]byte, error) {
	var candidate []byte

	trimmed := bytes.TrimSpace(raw)

	if rest, ok := bytes.CutPrefix(trimmed, []byte(keyArtifactTag+":")); ok {
		version, encoded, found := bytes.Cut(rest, []byte(":"))
		if !found || string(version) != keyArtifactVersion {
			return nil, fmt.Errorf("%w: unsupported key artifact version %q", fault.ErrKeyFormat, version)
		}

		decoded, err := base64.URLEncoding.DecodeString(string(encoded))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding tagged key: %w", fault.ErrKeyFormat, err)
		}

		candidate = []byte(base64.URLEncoding.EncodeToString(decoded))
	} else {
		candidate = normalizeLegacy(raw, trimmed)
	}

	decoded, err := base64.URLEncoding.DecodeString(string(candidate))
	if err != nil {
		return nil, fmt.Errorf("%w: key is not base64url: %w", fault.ErrKeyFormat, err)
	}

	if len(decoded) != FernetKeySize {
		return nil, fmt.Errorf("%w: key is %d bytes when decoded, want %d", fault.ErrKeyFormat, len(decoded), FernetKeySize)
	}

	return candidate, nil
}

func normalizeLegacy(raw, trimmed []byte) []byte {
	if bytes.HasPrefix(trimmed, []byte(legacyPEMMarker)) {
		return trimmed
	}

	if decoded, err := decodeBase64URL(trimmed); err == nil {
		return []byte(base64.URLEncoding.EncodeToString(decoded))
	}

	return []byte(base64.URLEncoding.EncodeToString(raw))
}
