// Package session binds the pipeline stages to one private workspace.
//
// Sessions never share locations, so any number of them may run at once.
// The operations of a single session are serialized by its own mutex.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/gochap/internal/chapter"
	"github.com/idelchi/gochap/internal/encryption"
	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/fileutil"
	"github.com/idelchi/gochap/internal/logging"
	"github.com/idelchi/gochap/internal/scratch"
	"github.com/idelchi/gochap/internal/workspace"
)

// Session runs split, encode, decode and reassemble against one workspace.
type Session struct {
	mu sync.Mutex

	layout    workspace.Layout
	ignore    *scratch.Ignore
	strict    bool
	legacyKey bool
	keyName   string
	log       logrus.FieldLogger
}

// Option configures a Session.
type Option func(*Session)

// WithIgnore skips intake entries matched by ignore.
func WithIgnore(ignore *scratch.Ignore) Option {
	return func(s *Session) { s.ignore = ignore }
}

// WithStrict rejects an intake holding more than one entry.
func WithStrict(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

// WithLegacyKey writes key artifacts as bare key text.
func WithLegacyKey(legacy bool) Option {
	return func(s *Session) { s.legacyKey = legacy }
}

// WithKeyName sets the key artifact file name.
func WithKeyName(name string) Option {
	return func(s *Session) { s.keyName = name }
}

// WithLogger sets the logger; the session adds its own field.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// New prepares layout and returns a session bound to it.
func New(layout workspace.Layout, opts ...Option) (*Session, error) {
	if err := layout.Prepare(); err != nil {
		return nil, err
	}

	s := &Session{layout: layout}

	for _, opt := range opts {
		opt(s)
	}

	s.log = logging.Or(s.log).WithField("session", filepath.Base(layout.Root))

	return s, nil
}

// Temp creates a uniquely named workspace under parent and binds a session to it.
// Callers remove it with Remove when done.
func Temp(parent string, opts ...Option) (*Session, error) {
	layout, err := workspace.Temp(parent)
	if err != nil {
		return nil, err
	}

	return New(layout, opts...)
}

// Layout returns the workspace locations of the session.
func (s *Session) Layout() workspace.Layout {
	return s.layout
}

// Remove deletes the whole workspace.
func (s *Session) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.layout.Remove()
}

// Stage copies the file at path into a freshly reset intake location.
// It returns the staged path.
func (s *Session) Stage(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stage(path)
}

// Split breaks the intake file into chunks.
func (s *Session) Split() (*chapter.SplitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.splitter().Split()
}

// Encode encrypts the chunk set and writes the key artifact.
func (s *Session) Encode() (*encryption.EncodeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.encoder().Encode()
}

// Decode decrypts the ciphertext chunk set with the key artifact content.
func (s *Session) Decode(keyArtifact []byte) (*encryption.DecodeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.decoder().Decode(keyArtifact)
}

// Reassemble writes the restored file from the plaintext chunk set.
func (s *Session) Reassemble() (*chapter.ReassembleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reassembler().Reassemble()
}

// SealResult describes a completed Seal.
type SealResult struct {
	Split  *chapter.SplitResult
	Encode *encryption.EncodeResult
}

// Seal stages source, splits it and encrypts the chunks.
func (s *Session) Seal(source string) (*SealResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stage(source); err != nil {
		return nil, err
	}

	split, err := s.splitter().Split()
	if err != nil {
		return nil, fmt.Errorf("splitting: %w", err)
	}

	encoded, err := s.encoder().Encode()
	if err != nil {
		s.discard(s.layout.Chunks, s.layout.Ciphertext, s.layout.Keys, s.layout.Metadata)

		return nil, fmt.Errorf("encoding: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"file":   split.Metadata.FileName,
		"chunks": encoded.Chunks,
	}).Info("sealed")

	return &SealResult{Split: split, Encode: encoded}, nil
}

// RestoreResult describes a completed Restore.
type RestoreResult struct {
	Decode     *encryption.DecodeResult
	Reassemble *chapter.ReassembleResult
}

// Restore decrypts the ciphertext chunk set and reassembles the file.
// On failure neither plaintext chunks nor a restored file remain.
func (s *Session) Restore(keyArtifact []byte) (*RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decoded, err := s.decoder().Decode(keyArtifact)
	if err != nil {
		s.discard(s.layout.Chunks, s.layout.Restored)

		return nil, fmt.Errorf("decoding: %w", err)
	}

	restored, err := s.reassembler().Reassemble()
	if err != nil {
		s.discard(s.layout.Chunks, s.layout.Restored)

		return nil, fmt.Errorf("reassembling: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"file":  restored.Metadata.FileName,
		"bytes": restored.Size,
	}).Info("restored")

	return &RestoreResult{Decode: decoded, Reassemble: restored}, nil
}

func (s *Session) stage(path string) (string, error) {
	staged := filepath.Join(s.layout.Intake, filepath.Base(path))

	if sameFile(path, staged) {
		return staged, nil
	}

	if err := scratch.Reset(s.layout.Intake); err != nil {
		return "", fmt.Errorf("resetting intake: %w", err)
	}

	size, err := fileutil.CopyFile(path, staged)
	if err != nil {
		return "", fmt.Errorf("%w: staging %q: %w", fault.ErrIntake, path, err)
	}

	s.log.WithFields(logrus.Fields{"file": filepath.Base(path), "bytes": size}).Debug("staged source")

	return staged, nil
}

// sameFile reports whether a and b name the same existing file.
func sameFile(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}

	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(infoA, infoB)
}

func (s *Session) discard(locations ...string) {
	for _, location := range locations {
		if err := scratch.Reset(location); err != nil {
			s.log.WithError(err).WithField("location", location).Warn("discarding partial output")
		}
	}
}

func (s *Session) splitter() *chapter.Splitter {
	return &chapter.Splitter{
		Intake:   s.layout.Intake,
		Chunks:   s.layout.Chunks,
		Metadata: s.layout.Metadata,
		Ignore:   s.ignore,
		Strict:   s.strict,
		Log:      s.log,
	}
}

func (s *Session) encoder() *encryption.Encoder {
	return &encryption.Encoder{
		Chunks:     s.layout.Chunks,
		Ciphertext: s.layout.Ciphertext,
		Keys:       s.layout.Keys,
		Metadata:   s.layout.Metadata,
		KeyName:    s.keyName,
		Legacy:     s.legacyKey,
		Log:        s.log,
	}
}

func (s *Session) decoder() *encryption.Decoder {
	return &encryption.Decoder{
		Ciphertext: s.layout.Ciphertext,
		Chunks:     s.layout.Chunks,
		Metadata:   s.layout.Metadata,
		Log:        s.log,
	}
}

func (s *Session) reassembler() *chapter.Reassembler {
	return &chapter.Reassembler{
		Chunks:   s.layout.Chunks,
		Metadata: s.layout.Metadata,
		Restored: s.layout.Restored,
		Log:      s.log,
	}
}
