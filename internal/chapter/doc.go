// Package chapter splits a source file into fixed-size chunks ("chapters")
// and reassembles them.
//
// Chunks are named SECRET followed by a seven digit, zero padded ordinal, so
// sorting the names recovers the original order. Nothing else records it.
package chapter
