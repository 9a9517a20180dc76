package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pobar/internal/platform"
)

// DefaultLinkSDKRoot is the SDK root as seen from internal/engine/dcv.
const DefaultLinkSDKRoot = "${SRCDIR}/../../../sdk"

func newLinkCommand() *cobra.Command {
	var (
		targets []string
		sdkRoot string
		pkg     string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Generate the cgo link files of the engine binding",
		Long: `link writes one zz_link_<os>.go file per target OS into --out.
Each file carries the #cgo CFLAGS and LDFLAGS of the OS profile and is
only compiled with the dcv build tag. Unchanged files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.Default()
			for _, goos := range targets {
				p, err := platform.Resolve(goos)
				if err != nil {
					return err
				}
				written, err := writeLinkFile(p, pkg, sdkRoot, outDir)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, p.LinkFileName())
				if written {
					logger.Info("link file written", "os", p.OS, "path", path)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				} else {
					logger.Debug("link file up to date", "os", p.OS, "path", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&targets, "os", platform.Supported(), "target OSes to generate")
	cmd.Flags().StringVar(&sdkRoot, "sdk-root", DefaultLinkSDKRoot, "SDK root as written into the #cgo directives")
	cmd.Flags().StringVar(&pkg, "pkg", "dcv", "package name of the generated files")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}

// writeLinkFile renders the link file for p and reports whether it changed on disk.
func writeLinkFile(p platform.Profile, pkg, sdkRoot, outDir string) (bool, error) {
	src, err := p.RenderLinkFile(pkg, sdkRoot)
	if err != nil {
		return false, err
	}
	path := filepath.Join(outDir, p.LinkFileName())
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, src) {
		return false, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return false, fmt.Errorf("create output dir %s: %w", outDir, err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
