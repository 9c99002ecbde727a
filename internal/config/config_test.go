package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gochap/internal/config"
)

func valid() config.Config {
	return config.Config{
		Workspace: ".",
		KeyName:   "session_key.pem",
		LogLevel:  "info",
		LogFormat: "text",
		Source:    "file.bin",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"encrypt", func(*config.Config) {}, false},
		{"encrypt without source", func(c *config.Config) { c.Source = "" }, true},
		{"decrypt with key file", func(c *config.Config) { c.Decrypt, c.Source, c.KeyFile = true, "", "k.pem" }, false},
		{"decrypt with key", func(c *config.Config) { c.Decrypt, c.Key = true, "abc" }, false},
		{"decrypt without key", func(c *config.Config) { c.Decrypt = true }, true},
		{"key and key file", func(c *config.Config) { c.Decrypt, c.Key, c.KeyFile = true, "abc", "k.pem" }, true},
		{"key name with separator", func(c *config.Config) { c.KeyName = "../k.pem" }, true},
		{"key name dot dot", func(c *config.Config) { c.KeyName = ".." }, true},
		{"empty key name", func(c *config.Config) { c.KeyName = "" }, true},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, true},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }, true},
		{"empty workspace", func(c *config.Config) { c.Workspace = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadJSONC(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gochap.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
	// workspace shared by encrypt and decrypt
	"workspace": "/srv/gochap",
	"strict": true,
	"ignore": [".*", "*.tmp",],
	"log-level": "debug", /* trailing comma above is fine */
}`), 0o600))

	v := viper.New()
	v.Set("config", path)
	v.SetDefault("key-name", "session_key.pem")

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/gochap", cfg.Workspace)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{".*", "*.tmp"}, cfg.Ignore)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "session_key.pem", cfg.KeyName)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "missing.jsonc"))

	_, err := config.Load(v)
	require.Error(t, err)
}

func TestIgnorePatterns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ignore.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`[
	// editor files
	"*.swp",
	"Thumbs.db",
]`), 0o600))

	cfg := valid()
	cfg.Ignore = []string{".*"}
	cfg.IgnoreFrom = path

	patterns, err := cfg.IgnorePatterns()
	require.NoError(t, err)
	assert.Equal(t, []string{".*", "*.swp", "Thumbs.db"}, patterns)

	matcher, err := cfg.Matcher()
	require.NoError(t, err)
	assert.True(t, matcher.Match("notes.swp"))
	assert.False(t, matcher.Match("notes.txt"))
}

func TestMatcherWithoutPatterns(t *testing.T) {
	t.Parallel()

	cfg := valid()

	matcher, err := cfg.Matcher()
	require.NoError(t, err)
	assert.Nil(t, matcher)
}

func TestKeyArtifact(t *testing.T) {
	t.Parallel()

	cfg := valid()
	cfg.Key = "  inline-key\n"

	got, err := cfg.KeyArtifact()
	require.NoError(t, err)
	assert.Equal(t, []byte("inline-key"), got)

	path := filepath.Join(t.TempDir(), "k.pem")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

	cfg = valid()
	cfg.KeyFile = path

	got, err = cfg.KeyArtifact()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-file\n"), got)
}
