package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/pobar/internal/config"
	"github.com/MeKo-Tech/pobar/internal/version"
)

// Execute runs pobar-build and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCommand returns the pobar-build command tree.
func NewRootCommand() *cobra.Command {
	var (
		logLevel string
		cfgFile  string
	)

	rootCmd := &cobra.Command{
		Use:   "pobar-build",
		Short: "Build-time helpers for linking and packaging the barcode engine",
		Long: `pobar-build resolves the per-OS linking profile of the Dynamsoft SDK,
generates the cgo link files of the engine binding and stages the SDK
libraries and resources next to a built binary.

Examples:
  pobar-build profile --os darwin
  pobar-build link --out internal/engine/dcv
  pobar-build stage --out bin --verify`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "pobar config file supplying sdk_root (default is search in ., $HOME, $HOME/.config/pobar, /etc/pobar)")

	loadConfig := func() (*config.Config, error) {
		return config.NewLoaderWithViper(viper.New()).LoadWithFile(cfgFile)
	}
	rootCmd.AddCommand(newProfileCommand(), newLinkCommand(), newStageCommand(loadConfig))
	return rootCmd
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
