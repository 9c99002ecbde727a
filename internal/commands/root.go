package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gochap/internal/config"
	"github.com/idelchi/gochap/internal/encryption"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	v := viper.New()
	bindEnv(v)

	root := &cobra.Command{
		Use:   "gochap [flags] command [flags]",
		Short: "Chunked file encryption utility",
		Long: `Splits a file into 32 KiB chunks and encrypts each chunk with one of four
rotating ciphers. The session keys are sealed under a single outer key,
which is the only artifact needed to restore the file from the workspace.`,
		Version:           version,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	root.PersistentFlags().StringP("workspace", "w", ".", "Workspace root holding the session locations")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("stats", false, "Print statistics after the run")
	root.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringP("config", "c", "", "Path to a JSONC configuration file")
	root.PersistentFlags().String("key-name", encryption.DefaultKeyName, "File name of the key artifact")

	root.AddCommand(
		NewEncryptCommand(v, cfg),
		NewDecryptCommand(v, cfg),
		NewKeyCommand(),
	)

	return root
}
