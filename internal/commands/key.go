package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gochap/internal/logic"
)

// NewKeyCommand groups the key utilities.
func NewKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Generate or normalize key artifacts",
	}

	generate := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Print a fresh key artifact",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			legacy, err := cmd.Flags().GetBool("legacy-key")
			if err != nil {
				return err
			}

			return logic.GenerateKey(cmd.OutOrStdout(), legacy)
		},
	}

	generate.Flags().Bool("legacy-key", false, "Print the bare key text instead of the tagged artifact")

	normalize := &cobra.Command{
		Use:   "normalize file",
		Short: "Print the canonical key text of a key artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return logic.NormalizeKey(cmd.OutOrStdout(), args[0])
		},
	}

	cmd.AddCommand(generate, normalize)

	return cmd
}
