package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pobar/internal/config"
	"github.com/MeKo-Tech/pobar/internal/platform"
	"github.com/MeKo-Tech/pobar/internal/sdk"
	"github.com/MeKo-Tech/pobar/internal/stage"
)

func newStageCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		goos    string
		sdkRoot string
		outDir  string
		verify  bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Copy SDK libraries and resources next to a built binary",
		Long: `stage copies the shared libraries of the target OS profile and the
Templates and Models resource trees from the SDK into --out.

Libraries that already exist at the destination are kept. Copy failures are
reported as warnings and do not fail the command unless --strict is set.
The SDK root is taken from --sdk-root, then sdk_root in the pobar config
file or $POBAR_SDK_ROOT, then <project>/sdk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := platform.Resolve(goos)
			if err != nil {
				return err
			}
			if sdkRoot == "" {
				cfg, err := loadConfig()
				if err != nil {
					return fmt.Errorf("error loading configuration: %w", err)
				}
				sdkRoot = cfg.SDKRoot
			}
			root := sdk.GetRoot(sdkRoot)
			logger := slog.Default().With("os", p.OS, "sdk", root)
			if err := sdk.Validate(root, p); err != nil {
				logger.Warn("sdk incomplete", "error", err)
			}

			report, err := stage.New(root, outDir, stage.WithLogger(logger)).Stage(cmd.Context(), p)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), report)

			if verify {
				if err := report.Verify(); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "verified: staged artifacts match the sdk")
			}
			if strict && len(report.Warnings) > 0 {
				return fmt.Errorf("staging finished with %d warnings", len(report.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goos, "os", runtime.GOOS, "target OS whose libraries are staged")
	cmd.Flags().StringVar(&sdkRoot, "sdk-root", "", "SDK root (default sdk_root from config, $POBAR_SDK_ROOT or <project>/sdk)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "bin", "directory of the built binary")
	cmd.Flags().BoolVar(&verify, "verify", false, "compare staged artifacts with the sdk after copying")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any artifact could not be copied")
	return cmd
}

func writeReport(w io.Writer, r *stage.Report) {
	_, _ = fmt.Fprintf(w, "Staged %s into %s\n", r.Profile.String(), r.OutputDir)
	for _, a := range r.Copied {
		_, _ = fmt.Fprintf(w, "  copied   %s\n", filepath.Base(a.Dest))
	}
	for _, a := range r.Skipped {
		_, _ = fmt.Fprintf(w, "  kept     %s\n", filepath.Base(a.Dest))
	}
	for _, a := range r.Resources {
		_, _ = fmt.Fprintf(w, "  resource %s\n", filepath.Base(a.Dest))
	}
	for _, name := range r.Missing {
		_, _ = fmt.Fprintf(w, "  missing  %s\n", name)
	}
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintf(w, "  warning  %v\n", warn)
	}
}
