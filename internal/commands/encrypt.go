package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gochap/internal/config"
	"github.com/idelchi/gochap/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] file",
		Aliases: []string{"enc"},
		Short:   "Split and encrypt a file into the workspace",
		Args:    cobra.ExactArgs(1),
		PreRunE: preRun(v, cfg, false),
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			return logic.Encrypt(cfg, log, output(cmd))
		},
	}

	cmd.Flags().Bool("strict", false, "Fail when the intake holds more than one entry")
	cmd.Flags().StringSlice("ignore", nil, "Glob patterns of intake entries to skip (repeatable)")
	cmd.Flags().String("ignore-from", "", "Path to a JSONC file with an array of ignore patterns")
	cmd.Flags().Bool("legacy-key", false, "Write the key artifact as bare key text")

	return cmd
}
