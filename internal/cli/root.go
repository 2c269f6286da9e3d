// Package cli implements the mlkit command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/mlkit"
	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/logging"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mlkit",
	Short: "Inspect ML pipeline configs and artifacts",
	Long: `mlkit reads pipeline configuration files, prepares artifact directories,
and manages run artifacts on disk.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupToolkit,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}

// Execute runs the command line and renders failures for the terminal.
func Execute(ctx context.Context) error {
	return mlerrors.Wrap(rootCmd.ExecuteContext(ctx))
}

// setupToolkit builds the process logger from the global flags and stores a
// Toolkit in the command context.
func setupToolkit(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Writer: cmd.ErrOrStderr(),
		Level:  level,
		Format: format,
	})
	cmd.SetContext(mlkit.WithToolkit(cmd.Context(), mlkit.New(logger)))
	return nil
}

func toolkit(cmd *cobra.Command) *mlkit.Toolkit {
	return mlkit.MustFromContext(cmd.Context())
}

// printValue writes scalars as plain text and everything else as YAML.
func printValue(cmd *cobra.Command, v any) error {
	switch v.(type) {
	case string, bool, int, int64, float64:
		cmd.Println(fmt.Sprint(v))
		return nil
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("render value: %w", err)
	}
	cmd.Print(string(out))
	return nil
}
