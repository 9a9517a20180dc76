package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SupportedExtensions are the image and document types the engine accepts, lower-case.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif", ".pdf"}

// ErrInvalidInput is matched by InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names an argument that is neither a directory nor a supported file.
type InvalidInputError struct {
	Arg string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("'%s' is not a valid file or directory, or not a supported image format.", e.Arg)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Options controls directory expansion.
type Options struct {
	Recursive bool
	Include   []string
	Exclude   []string
}

// Input is one command-line argument after expansion.
type Input struct {
	// Arg is the argument as given.
	Arg string
	// Dir is set when Arg named a directory; Files then lists its images.
	Dir   bool
	Files []string
}

// IsSupported reports whether path has a supported extension, ignoring case.
func IsSupported(p string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(p)))
}

// ValidatePatterns rejects malformed include or exclude globs up front.
func (o Options) ValidatePatterns() error {
	for _, p := range slices.Concat(o.Include, o.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern: %q", p)
		}
	}
	return nil
}

// Discover expands args in order. Paths that do not exist are passed through as
// single-file inputs so the decoder can report them; existing files with an
// unsupported extension are returned as InvalidInputError warnings.
func Discover(args []string, opts Options) ([]Input, []error) {
	var (
		inputs   []Input
		warnings []error
	)
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err != nil:
			inputs = append(inputs, Input{Arg: arg, Files: []string{arg}})
		case info.IsDir():
			files, err := discoverInDirectory(arg, opts)
			if err != nil {
				warnings = append(warnings, fmt.Errorf("error accessing directory %s: %w", arg, err))
				continue
			}
			inputs = append(inputs, Input{Arg: arg, Dir: true, Files: files})
		case info.Mode().IsRegular() && IsSupported(arg):
			if shouldIncludeFile(filepath.Base(arg), opts.Include, opts.Exclude) {
				inputs = append(inputs, Input{Arg: arg, Files: []string{arg}})
			}
		default:
			warnings = append(warnings, &InvalidInputError{Arg: arg})
		}
	}
	return inputs, warnings
}

// discoverInDirectory lists the supported files below dir in lexical order.
func discoverInDirectory(dir string, opts Options) ([]string, error) {
	pattern := "*"
	if opts.Recursive {
		pattern = "**/*"
	}

	var files []string
	err := doublestar.GlobWalk(os.DirFS(dir), pattern, func(rel string, d fs.DirEntry) error {
		if !IsSupported(rel) || !shouldIncludeFile(rel, opts.Include, opts.Exclude) {
			return nil
		}
		files = append(files, filepath.Join(dir, filepath.FromSlash(rel)))
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// rel is slash-separated and relative to the scanned directory.
func shouldIncludeFile(rel string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(rel, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(rel, includePatterns)
}

// matchesAnyPattern matches against the relative path and, for convenience, the base name.
func matchesAnyPattern(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
