package encryption

import (
	"github.com/fernet/fernet-go"
	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

func randomBytes(n int) []byte {
	return random.GetRandomBytes(uint32(n)) //nolint:gosec // n is a small positive constant
}

func randomFernetKey() *fernet.Key {
	var key fernet.Key

	copy(key[:], randomBytes(FernetKeySize))

	return &key
}
