// Package encryption seals a chunk set with four rotating ciphers and packages
// the session keys.
//
// The cipher for a chunk is chosen by its ordinal alone (see ForOrdinal):
// double-layer Fernet, ChaCha20-Poly1305, AES-128-GCM and AES-128-CCM in turn.
// All keys and nonces of a session live in one KeyBundle, which is itself
// sealed under an outer Fernet key into a sidecar file. The outer key is the
// only artifact a recipient needs besides the ciphertext.
package encryption
