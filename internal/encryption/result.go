package encryption

// EncodeResult describes the artifacts of one encryption session.
type EncodeResult struct {
	// KeyArtifact is the path of the distributable outer key.
	KeyArtifact string

	// Sidecar is the path of the encrypted key bundle.
	Sidecar string

	// Chunks is the number of chunks encrypted.
	Chunks int

	// Bytes is the total ciphertext size.
	Bytes int64

	// PerAlgorithm counts the chunks handled by each algorithm.
	PerAlgorithm map[Algorithm]int
}

// DecodeResult describes the plaintext chunk set recovered by a decode.
type DecodeResult struct {
	// Chunks is the number of chunks decrypted.
	Chunks int

	// Bytes is the total plaintext size.
	Bytes int64
}
