package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gochap/internal/config"
	"github.com/idelchi/gochap/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(v *viper.Viper, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags]",
		Aliases: []string{"dec"},
		Short:   "Decrypt the workspace and restore the original file",
		Args:    cobra.NoArgs,
		PreRunE: preRun(v, cfg, true),
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			return logic.Decrypt(cfg, log, output(cmd))
		},
	}

	cmd.Flags().StringP("key", "k", "", "Key artifact content")
	cmd.Flags().StringP("key-file", "f", "", "Path to the key artifact")

	return cmd
}
