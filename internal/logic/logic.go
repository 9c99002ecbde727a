// Package logic implements the encrypt, decrypt and key commands on top of a session.
package logic

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/gochap/internal/config"
	"github.com/idelchi/gochap/internal/encryption"
	"github.com/idelchi/gochap/internal/fault"
	"github.com/idelchi/gochap/internal/session"
	"github.com/idelchi/gochap/internal/workspace"
)

// Output holds the streams results and stats are written to.
type Output struct {
	// Stdout receives result lines; --quiet suppresses them.
	Stdout io.Writer

	// Stderr receives the stats block.
	Stderr io.Writer
}

// Encrypt stages the configured source into the workspace, splits and encrypts it.
func Encrypt(cfg *config.Config, log logrus.FieldLogger, out Output) error {
	start := time.Now()

	s, err := open(cfg, log)
	if err != nil {
		return err
	}

	sealed, err := s.Seal(cfg.Source)
	if err != nil {
		return fmt.Errorf("encrypting %q: %w", cfg.Source, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out.Stdout, "Encrypted %q -> %q\n", cfg.Source, s.Layout().Ciphertext)
		fmt.Fprintf(out.Stdout, "Key written to %q\n", sealed.Encode.KeyArtifact)
	}

	if cfg.Stats {
		printStats(out.Stderr, stats{
			file:       sealed.Split.Metadata.FileName,
			chunks:     sealed.Encode.Chunks,
			algorithms: sealed.Encode.PerAlgorithm,
			size:       sealed.Split.Bytes,
			duration:   time.Since(start),
		})
	}

	return nil
}

// Decrypt restores the file held in the workspace with the configured key.
func Decrypt(cfg *config.Config, log logrus.FieldLogger, out Output) error {
	start := time.Now()

	key, err := cfg.KeyArtifact()
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrKeyFormat, err)
	}

	s, err := open(cfg, log)
	if err != nil {
		return err
	}

	restored, err := s.Restore(key)
	if err != nil {
		return fmt.Errorf("decrypting workspace %q: %w", cfg.Workspace, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out.Stdout, "Restored %q\n", restored.Reassemble.Path)
	}

	if cfg.Stats {
		printStats(out.Stderr, stats{
			file:     restored.Reassemble.Metadata.FileName,
			chunks:   restored.Decode.Chunks,
			size:     restored.Reassemble.Size,
			duration: time.Since(start),
		})
	}

	return nil
}

// GenerateKey writes a fresh key artifact to w.
func GenerateKey(w io.Writer, legacy bool) error {
	artifact := encryption.EncodeKeyArtifact(encryption.GenerateOuterKey(), !legacy)

	if legacy {
		artifact = append(artifact, '\n')
	}

	_, err := w.Write(artifact)

	return err
}

// NormalizeKey writes the canonical key text of the artifact at path to w.
func NormalizeKey(w io.Writer, path string) error {
	raw, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied argument
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrKeyFormat, fault.IO("reading key artifact", err))
	}

	canonical, err := encryption.NormalizeKey(raw)
	if err != nil {
		return fmt.Errorf("normalizing %q: %w", path, err)
	}

	_, err = fmt.Fprintf(w, "%s\n", canonical)

	return err
}

func open(cfg *config.Config, log logrus.FieldLogger) (*session.Session, error) {
	ignore, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}

	s, err := session.New(
		workspace.New(cfg.Workspace),
		session.WithIgnore(ignore),
		session.WithStrict(cfg.Strict),
		session.WithLegacyKey(cfg.LegacyKey),
		session.WithKeyName(cfg.KeyName),
		session.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("opening workspace %q: %w", cfg.Workspace, err)
	}

	return s, nil
}

type stats struct {
	file       string
	chunks     int
	algorithms map[encryption.Algorithm]int
	size       int64
	duration   time.Duration
}

func printStats(w io.Writer, s stats) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  File:      %s\n", s.file)
	fmt.Fprintf(w, "  Chunks:    %d\n", s.chunks)

	algorithms := make([]encryption.Algorithm, 0, len(s.algorithms))
	for a := range s.algorithms {
		algorithms = append(algorithms, a)
	}

	sort.Slice(algorithms, func(i, j int) bool { return algorithms[i] < algorithms[j] })

	for _, a := range algorithms {
		fmt.Fprintf(w, "    %-20s %d\n", a.String()+":", s.algorithms[a])
	}

	//nolint:gosec // size is always non-negative (sum of chunk sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, s.size))))
	fmt.Fprintf(w, "  Duration:  %s\n", s.duration.Round(time.Millisecond))
}
