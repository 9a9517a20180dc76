package sdk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pobar/internal/platform"
)

// Layout constants of the Dynamsoft Capture Vision SDK tree.
const (
	ResourceDir = "resource"

	TemplatesDir = "Templates"
	ModelsDir    = "Models"
)

// ResourceTrees are the resource directories staged next to the binary.
var ResourceTrees = []string{TemplatesDir, ModelsDir}

// DefaultRoot is the SDK directory relative to the project root.
const DefaultRoot = "sdk"

// EnvRoot overrides the SDK root.
const EnvRoot = "POBAR_SDK_ROOT"

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("could not find project root (go.mod not found)")
}

// GetRoot returns the SDK root.
// Priority: 1. Explicit root parameter, 2. Environment variable, 3. Project root + default.
func GetRoot(root string) string {
	if root != "" {
		return root
	}

	if envDir := os.Getenv(EnvRoot); envDir != "" {
		return envDir
	}

	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultRoot)
	}

	return DefaultRoot
}

// LibraryDir returns the platform-specific library directory of the SDK.
func LibraryDir(root string, p platform.Profile) string {
	return filepath.Join(GetRoot(root), filepath.FromSlash(p.LibSubdir))
}

// ResourcePath returns the path of a named resource tree inside the SDK.
func ResourcePath(root, name string) string {
	return filepath.Join(GetRoot(root), ResourceDir, name)
}

// Validate checks that the SDK root exists and has the platform library directory.
func Validate(root string, p platform.Profile) error {
	base := GetRoot(root)
	info, err := os.Stat(base)
	if err != nil {
		return fmt.Errorf("sdk root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sdk root is not a directory: %s", base)
	}
	if _, err := os.Stat(LibraryDir(root, p)); err != nil {
		return fmt.Errorf("sdk has no %s libraries at %s: %w", p.OS, LibraryDir(root, p), err)
	}
	return nil
}
