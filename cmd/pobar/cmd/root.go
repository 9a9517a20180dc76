package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/pobar/internal/batch"
	"github.com/MeKo-Tech/pobar/internal/cli"
	"github.com/MeKo-Tech/pobar/internal/config"
	"github.com/MeKo-Tech/pobar/internal/engine"
	"github.com/MeKo-Tech/pobar/internal/engine/dcv"
	"github.com/MeKo-Tech/pobar/internal/metrics"
	"github.com/MeKo-Tech/pobar/internal/overlay"
	"github.com/MeKo-Tech/pobar/internal/version"
)

// NativeFactory builds the engine binding used by one command run.
type NativeFactory func() (engine.Native, error)

// newNative builds the engine binding. Tests replace it with a fake.
var newNative NativeFactory = dcv.New

// Execute runs the pobar command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCommand returns the pobar command with its own flag set and viper instance.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithEngine(nil)
}

// NewRootCommandWithEngine is NewRootCommand with a custom engine factory.
// A nil factory selects the linked Dynamsoft binding.
func NewRootCommandWithEngine(factory NativeFactory) *cobra.Command {
	v := viper.New()
	var (
		cfgFile     string
		writeConfig string
		cfg         *config.Config
	)

	rootCmd := &cobra.Command{
		Use:   "pobar [file_or_directory ...]",
		Short: "Decode barcodes from images with the Dynamsoft Barcode Reader SDK",
		Long: `pobar reads barcodes and QR codes from image files using the native
Dynamsoft Capture Vision engine.

Without arguments it starts an interactive prompt that shares one engine
instance for the whole session. With arguments it decodes each file once;
directories are scanned for supported images (jpg, jpeg, png, bmp, tif,
tiff, gif, pdf).

Examples:
  pobar
  pobar label.png
  pobar ./scans --format json --output results.json
  pobar ./scans --include '**/*.png' --overlay-dir overlays`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if writeConfig != "" {
				return nil
			}
			loaded, err := config.NewLoaderWithViper(v).LoadWithFile(cfgFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			cfg = loaded
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if writeConfig != "" {
				if err := config.GenerateDefaultConfigFile(writeConfig); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", writeConfig)
				return nil
			}
			newEngine := factory
			if newEngine == nil {
				newEngine = newNative
			}
			return run(cmd, args, cfg, newEngine)
		},
	}

	defaults := config.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/pobar, /etc/pobar)")
	flags.StringVar(&writeConfig, "write-config", "", "write a starter configuration file and exit")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.String("license", "", "license key (default is the public trial key; env POBAR_LICENSE_KEY)")
	flags.StringP("format", "f", defaults.Output.Format, "output format (text, json, csv, yaml)")
	flags.StringP("output", "o", "", "write results to this file instead of stdout")
	flags.String("overlay-dir", "", "write <name>_overlay.png with outlined barcodes to this directory")
	flags.String("overlay-color", defaults.Output.OverlayColor, "overlay outline color (#RRGGBB)")
	flags.BoolP("recursive", "r", defaults.Batch.Recursive, "scan directories recursively")
	flags.StringSlice("include", nil, "only decode files matching these glob patterns (e.g. '**/*.png')")
	flags.StringSlice("exclude", nil, "skip files matching these glob patterns")
	flags.Bool("stats", defaults.Batch.ShowStats, "print per-directory and overall statistics")
	flags.Bool("continue-on-error", defaults.Batch.ContinueOnError, "keep going when a file fails to decode")
	flags.String("metrics-file", "", "write Prometheus metrics in textfile format to this path on exit")

	for key, flag := range map[string]string{
		"verbose":                 "verbose",
		"log_level":               "log-level",
		"license_key":             "license",
		"output.format":           "format",
		"output.file":             "output",
		"output.overlay_dir":      "overlay-dir",
		"output.overlay_color":    "overlay-color",
		"batch.recursive":         "recursive",
		"batch.include":           "include",
		"batch.exclude":           "exclude",
		"batch.show_stats":        "stats",
		"batch.continue_on_error": "continue-on-error",
		"metrics.textfile_path":   "metrics-file",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return rootCmd
}

func run(cmd *cobra.Command, args []string, cfg *config.Config, factory NativeFactory) (err error) {
	logger := slog.Default()

	col, err := overlay.ParseHexColor(cfg.Output.OverlayColor)
	if err != nil {
		return err
	}

	native, err := factory()
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	if cfg.Metrics.TextfilePath != "" {
		rec = metrics.NewRecorder()
		native = rec.Wrap(native)
		defer func() {
			if werr := rec.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
				err = errors.Join(err, werr)
			}
		}()
	}

	d := cli.New(native, driverConfig(cfg, col), cli.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()), cli.WithLogger(logger))

	if len(args) == 0 {
		logger.Debug("starting interactive session")
		return d.Interactive(cmd.Context(), cmd.InOrStdin())
	}
	logger.Debug("decoding arguments", "count", len(args))
	return d.Run(cmd.Context(), args)
}

func driverConfig(cfg *config.Config, col color.Color) cli.Config {
	return cli.Config{
		LicenseKey:   cfg.LicenseKey,
		Format:       cfg.Output.Format,
		OutputFile:   cfg.Output.File,
		OverlayDir:   cfg.Output.OverlayDir,
		OverlayColor: col,
		Discovery: batch.Options{
			Recursive: cfg.Batch.Recursive,
			Include:   cfg.Batch.Include,
			Exclude:   cfg.Batch.Exclude,
		},
		ShowStats:       cfg.Batch.ShowStats,
		ContinueOnError: cfg.Batch.ContinueOnError,
	}
}

// newLogger writes JSON logs to w so stdout stays reserved for results.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch {
	case cfg.Verbose:
		level = slog.LevelDebug
	case cfg.LogLevel == "debug":
		level = slog.LevelDebug
	case cfg.LogLevel == "warn":
		level = slog.LevelWarn
	case cfg.LogLevel == "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
