package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/pobar/internal/config"
	"github.com/MeKo-Tech/pobar/internal/engine/enginetest"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastStderr   string
	LastError    error
	LastExitCode int

	// Test environment
	WorkingDir  string
	TempDir     string
	originalDir string
	savedEnv    map[string]*string

	// Engine is the scripted engine every command of the scenario runs against.
	Engine *enginetest.Fake
}

// NewTestContext creates a scenario working directory and switches into it,
// so config search never picks up files from the repository.
func NewTestContext() (*TestContext, error) {
	originalDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "pobar-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	// Resolve symlinks (macOS /var -> /private/var) so printed paths compare equal.
	if resolved, err := filepath.EvalSymlinks(tempDir); err == nil {
		tempDir = resolved
	}
	if err := os.Chdir(tempDir); err != nil {
		return nil, fmt.Errorf("failed to enter temp directory: %w", err)
	}

	testCtx := &TestContext{
		WorkingDir:  tempDir,
		TempDir:     tempDir,
		originalDir: originalDir,
		savedEnv:    map[string]*string{},
		Engine:      enginetest.New(),
	}

	testCtx.SetEnv("HOME", tempDir)
	testCtx.SetEnv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg"))
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, config.EnvPrefix+"_") {
			testCtx.UnsetEnv(name)
		}
	}
	return testCtx, nil
}

// SetEnv sets an environment variable until Cleanup.
func (testCtx *TestContext) SetEnv(name, value string) {
	testCtx.saveEnv(name)
	_ = os.Setenv(name, value)
}

// UnsetEnv removes an environment variable until Cleanup.
func (testCtx *TestContext) UnsetEnv(name string) {
	testCtx.saveEnv(name)
	_ = os.Unsetenv(name)
}

func (testCtx *TestContext) saveEnv(name string) {
	if _, ok := testCtx.savedEnv[name]; ok {
		return
	}
	if v, ok := os.LookupEnv(name); ok {
		testCtx.savedEnv[name] = &v
	} else {
		testCtx.savedEnv[name] = nil
	}
}

// Cleanup restores the environment and working directory and removes the scenario files.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	for name, v := range testCtx.savedEnv {
		if v == nil {
			_ = os.Unsetenv(name)
		} else {
			_ = os.Setenv(name, *v)
		}
	}

	if err := os.Chdir(testCtx.originalDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to restore working directory: %w", err))
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Path resolves a scenario-relative path.
func (testCtx *TestContext) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(testCtx.WorkingDir, filepath.FromSlash(rel))
}

// substituteCommandVariables expands {tmp} to the scenario directory.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	return strings.ReplaceAll(command, "{tmp}", testCtx.TempDir)
}
