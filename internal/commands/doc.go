// Package commands provides the command-line interface for the gochap tool.
//
// It implements commands for:
//   - encryption of one file into a chunked, rotating-cipher workspace
//   - decryption of such a workspace back into the original file
//   - key generation and normalization
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gochap/internal/config"
	"github.com/idelchi/gochap/internal/logging"
	"github.com/idelchi/gochap/internal/logic"
)

// preRun returns a PreRunE handler that loads flags, environment and the
// config file into cfg and validates it.
func preRun(v *viper.Viper, cfg *config.Config, decrypt bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		loaded, err := config.Load(v)
		if err != nil {
			return err
		}

		*cfg = *loaded
		cfg.Decrypt = decrypt

		if len(args) > 0 {
			cfg.Source = args[0]
		}

		return cfg.Validate()
	}
}

// bindEnv makes every flag readable from GOCHAP_<FLAG_NAME>.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func newLogger(cfg *config.Config) (logrus.FieldLogger, error) {
	return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

func output(cmd *cobra.Command) logic.Output {
	return logic.Output{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
}
