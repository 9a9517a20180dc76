// Package stage copies the engine's shared libraries and resource trees from
// the SDK into a build output directory so the binary runs without a separate
// install step.
package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/MeKo-Tech/pobar/internal/platform"
	"github.com/MeKo-Tech/pobar/internal/sdk"
)

// Kind distinguishes library files from resource trees.
type Kind string

const (
	KindLibrary  Kind = "library"
	KindResource Kind = "resource"
)

// Artifact is one library file or one resource tree to be staged.
type Artifact struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
	Kind   Kind   `json:"kind" yaml:"kind"`
}

// Warning is a non-fatal staging problem. The build continues.
type Warning struct {
	Artifact Artifact
	Err      error
}

func (w Warning) Error() string {
	if w.Artifact.Source == "" {
		return fmt.Sprintf("staging warning: %v", w.Err)
	}
	return fmt.Sprintf("staging warning: %s -> %s: %v", w.Artifact.Source, w.Artifact.Dest, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Report summarizes one Stage run.
type Report struct {
	Profile   platform.Profile
	OutputDir string

	// Copied are library files written during this run.
	Copied []Artifact
	// Skipped are library files whose destination already existed.
	Skipped []Artifact
	// Resources are resource trees replaced during this run.
	Resources []Artifact
	// Missing are optional resource trees absent from the SDK.
	Missing []string
	// Warnings are copy failures that did not stop the build.
	Warnings []Warning
}

// Option configures a Stager.
type Option func(*Stager)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stager) {
		if l != nil {
			s.logger = l
		}
	}
}

// Stager copies SDK artifacts into an output directory.
type Stager struct {
	sdkRoot   string
	outputDir string
	logger    *slog.Logger

	// copyFile is swapped in tests to simulate locked destinations.
	copyFile func(src, dst string) error
}

// New creates a Stager for the SDK at sdkRoot writing into outputDir.
func New(sdkRoot, outputDir string, opts ...Option) *Stager {
	s := &Stager{
		sdkRoot:   sdk.GetRoot(sdkRoot),
		outputDir: outputDir,
		logger:    slog.Default(),
		copyFile:  copyFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Libraries enumerates the library artifacts for p without copying anything.
// A missing library directory yields no artifacts and no error.
func (s *Stager) Libraries(p platform.Profile) ([]Artifact, error) {
	libDir := sdk.LibraryDir(s.sdkRoot, p)
	if _, err := os.Stat(libDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat library dir %s: %w", libDir, err)
	}

	matches, err := doublestar.Glob(os.DirFS(libDir), p.LibraryGlob(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", p.LibraryGlob(), libDir, err)
	}

	out := make([]Artifact, 0, len(matches))
	for _, rel := range matches {
		src := filepath.Join(libDir, filepath.FromSlash(rel))
		out = append(out, Artifact{
			Source: src,
			Dest:   filepath.Join(s.outputDir, filepath.Base(src)),
			Kind:   KindLibrary,
		})
	}
	return out, nil
}

// Resources lists the resource tree artifacts, present or not.
func (s *Stager) Resources() []Artifact {
	out := make([]Artifact, 0, len(sdk.ResourceTrees))
	for _, name := range sdk.ResourceTrees {
		out = append(out, Artifact{
			Source: sdk.ResourcePath(s.sdkRoot, name),
			Dest:   filepath.Join(s.outputDir, name),
			Kind:   KindResource,
		})
	}
	return out
}

// Stage copies libraries and resource trees for profile p.
//
// Library files already present at the destination are skipped; other copy
// failures become warnings. Resource trees are replaced wholesale; an
// unreadable source tree fails the run while a missing one is ignored.
func (s *Stager) Stage(ctx context.Context, p platform.Profile) (*Report, error) {
	report := &Report{Profile: p, OutputDir: s.outputDir}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir %s: %w", s.outputDir, err)
	}

	libs, err := s.Libraries(p)
	if err != nil {
		return report, err
	}
	if libs == nil {
		w := Warning{Err: fmt.Errorf("no %s library directory at %s", p.OS, sdk.LibraryDir(s.sdkRoot, p))}
		report.Warnings = append(report.Warnings, w)
		s.logger.Warn("library directory missing", "os", p.OS, "dir", sdk.LibraryDir(s.sdkRoot, p))
	}

	for _, a := range libs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.stageLibrary(a, report)
	}

	for _, a := range s.Resources() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		staged, err := s.stageResource(a)
		if err != nil {
			return report, err
		}
		if !staged {
			report.Missing = append(report.Missing, filepath.Base(a.Source))
			continue
		}
		report.Resources = append(report.Resources, a)
	}

	s.logger.Info("staging complete",
		"profile", p.String(),
		"output", s.outputDir,
		"copied", len(report.Copied),
		"skipped", len(report.Skipped),
		"resources", len(report.Resources),
		"warnings", len(report.Warnings))
	return report, nil
}

func (s *Stager) stageLibrary(a Artifact, report *Report) {
	if _, err := os.Stat(a.Dest); err == nil {
		s.logger.Debug("skipping library (already exists)", "dest", a.Dest)
		report.Skipped = append(report.Skipped, a)
		return
	}

	if err := s.copyFile(a.Source, a.Dest); err != nil {
		s.logger.Warn("failed to copy library", "src", a.Source, "dest", a.Dest, "error", err)
		report.Warnings = append(report.Warnings, Warning{Artifact: a, Err: err})
		return
	}

	s.logger.Info("copied library", "src", a.Source, "dest", a.Dest)
	report.Copied = append(report.Copied, a)
}

// stageResource replaces a.Dest with a copy of a.Source. It reports false when
// the source tree does not exist.
func (s *Stager) stageResource(a Artifact) (bool, error) {
	info, err := os.Stat(a.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("resource tree not in sdk", "src", a.Source)
			return false, nil
		}
		return false, fmt.Errorf("stat resource tree %s: %w", a.Source, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("resource %s is not a directory", a.Source)
	}

	if err := os.RemoveAll(a.Dest); err != nil {
		return false, fmt.Errorf("remove stale %s: %w", a.Dest, err)
	}
	if err := copyTree(a.Source, a.Dest); err != nil {
		return false, fmt.Errorf("copy resource tree %s: %w", filepath.Base(a.Source), err)
	}

	s.logger.Info("copied resource tree", "src", a.Source, "dest", a.Dest)
	return true, nil
}

// copyTree copies src into dst preserving the directory structure.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

// copyFileAtomic writes dst through a temporary sibling so an interrupted copy
// never leaves a truncated file that a later run would skip as present.
func copyFileAtomic(src, dst string) error {
	tmp := dst + ".partial"
	if err := copyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: paths come from the SDK layout
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
