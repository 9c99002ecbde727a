package commands_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gochap/internal/commands"
	"github.com/idelchi/gochap/internal/config"
	"github.com/idelchi/gochap/internal/workspace"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := commands.NewRootCommand(&config.Config{}, "test")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestEncryptDecryptCommands(t *testing.T) {
	t.Parallel()

	data := make([]byte, 40_000)
	_, err := rand.Read(data)
	require.NoError(t, err)

	source := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(source, data, 0o600))

	root := t.TempDir()
	layout := workspace.New(root)

	out, err := run(t, "encrypt", "--workspace", root, "--key-name", "my.key", source)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(layout.Keys, "my.key"))

	out, err = run(t, "decrypt", "-w", root, "--key-file", filepath.Join(layout.Keys, "my.key"))
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(layout.Restored, "photo.jpg"))

	got, err := os.ReadFile(filepath.Join(layout.Restored, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDecryptInlineKey(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(source, []byte("hello"), 0o600))

	root := t.TempDir()

	_, err := run(t, "encrypt", "-q", "-w", root, "--legacy-key", source)
	require.NoError(t, err)

	key, err := os.ReadFile(filepath.Join(workspace.New(root).Keys, "session_key.pem"))
	require.NoError(t, err)

	_, err = run(t, "decrypt", "-q", "-w", root, "--key", string(key))
	require.NoError(t, err)
}

func TestDecryptRequiresOneKeySource(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	_, err := run(t, "decrypt", "-w", root)
	require.Error(t, err)

	_, err = run(t, "decrypt", "-w", root, "--key", "x", "--key-file", "y")
	require.Error(t, err)
}

func TestEncryptRequiresSource(t *testing.T) {
	t.Parallel()

	_, err := run(t, "encrypt", "-w", t.TempDir())
	require.Error(t, err)
}

func TestKeyCommands(t *testing.T) {
	t.Parallel()

	out, err := run(t, "key", "generate")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "gochap-key:v1:"))

	path := filepath.Join(t.TempDir(), "k.pem")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))

	normalized, err := run(t, "key", "normalize", path)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(out, "gochap-key:v1:"), normalized)
}

//nolint:paralleltest // mutates the process environment
func TestEnvironmentOverrides(t *testing.T) {
	source := filepath.Join(t.TempDir(), "env.bin")
	require.NoError(t, os.WriteFile(source, []byte("environment"), 0o600))

	root := t.TempDir()

	t.Setenv("GOCHAP_WORKSPACE", root)
	t.Setenv("GOCHAP_KEY_NAME", "from-env.key")

	_, err := run(t, "encrypt", "-q", source)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(workspace.New(root).Keys, "from-env.key"))
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "cfg.bin")
	require.NoError(t, os.WriteFile(source, []byte("configured"), 0o600))

	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "gochap.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
	// shared workspace
	"workspace": "`+filepath.ToSlash(root)+`",
	"key-name": "from-config.key",
}`), 0o600))

	_, err := run(t, "encrypt", "-q", "--config", path, source)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(workspace.New(root).Keys, "from-config.key"))
}
