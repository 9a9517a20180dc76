package sdk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/pobar/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRoot_Priority(t *testing.T) {
	t.Setenv(EnvRoot, "/env/sdk")

	assert.Equal(t, "/explicit", GetRoot("/explicit"))
	assert.Equal(t, "/env/sdk", GetRoot(""))
}

func TestGetRoot_ProjectRootFallback(t *testing.T) {
	t.Setenv(EnvRoot, "")

	root := GetRoot("")
	assert.Equal(t, DefaultRoot, filepath.Base(root))
}

func TestLibraryDirAndResourcePath(t *testing.T) {
	p, err := platform.Resolve("linux")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/opt/dcv", "lib", "linux", "x64"), LibraryDir("/opt/dcv", p))
	assert.Equal(t, filepath.Join("/opt/dcv", "resource", "Models"), ResourcePath("/opt/dcv", ModelsDir))
}

func TestValidate(t *testing.T) {
	p, err := platform.Resolve("darwin")
	require.NoError(t, err)

	root := t.TempDir()
	require.Error(t, Validate(filepath.Join(root, "missing"), p))
	require.Error(t, Validate(root, p))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "mac"), 0o750))
	require.NoError(t, Validate(root, p))

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.Error(t, Validate(file, p))
}
