package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pobar/internal/testutil"
)

func makeTree(t *testing.T) string {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	for _, rel := range []string{
		"a.png",
		"B.JPG",
		"notes.txt",
		"scan.pdf",
		"sub/c.tiff",
		"sub/skip.png",
		"sub/deeper/d.gif",
	} {
		testutil.WriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), "img")
	}
	return dir
}

func TestIsSupported(t *testing.T) {
	for _, p := range []string{"a.png", "A.PNG", "x/y.Jpeg", "doc.pdf", "f.tif", "f.bmp"} {
		assert.True(t, IsSupported(p), p)
	}
	for _, p := range []string{"a.txt", "png", "a.png.bak", ""} {
		assert.False(t, IsSupported(p), p)
	}
}

func TestDiscover_DirectoryRecursive(t *testing.T) {
	dir := makeTree(t)

	inputs, warnings := Discover([]string{dir}, Options{Recursive: true})
	require.Empty(t, warnings)
	require.Len(t, inputs, 1)
	assert.True(t, inputs[0].Dir)
	assert.Equal(t, []string{
		filepath.Join(dir, "B.JPG"),
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "scan.pdf"),
		filepath.Join(dir, "sub", "c.tiff"),
		filepath.Join(dir, "sub", "deeper", "d.gif"),
		filepath.Join(dir, "sub", "skip.png"),
	}, inputs[0].Files)
}

func TestDiscover_DirectoryNonRecursive(t *testing.T) {
	dir := makeTree(t)

	inputs, _ := Discover([]string{dir}, Options{})
	require.Len(t, inputs, 1)
	assert.Len(t, inputs[0].Files, 3)
}

func TestDiscover_IncludeExclude(t *testing.T) {
	dir := makeTree(t)

	inputs, _ := Discover([]string{dir}, Options{
		Recursive: true,
		Include:   []string{"**/*.png", "*.gif"},
		Exclude:   []string{"skip.*"},
	})
	require.Len(t, inputs, 1)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "sub", "deeper", "d.gif"),
	}, inputs[0].Files)
}

func TestDiscover_Files(t *testing.T) {
	dir := makeTree(t)
	png := filepath.Join(dir, "a.png")
	txt := filepath.Join(dir, "notes.txt")
	missing := filepath.Join(dir, "nonexistent.png")

	inputs, warnings := Discover([]string{png, txt, missing}, Options{})

	require.Len(t, inputs, 2)
	assert.Equal(t, Input{Arg: png, Files: []string{png}}, inputs[0])
	assert.Equal(t, Input{Arg: missing, Files: []string{missing}}, inputs[1], "missing paths reach the decoder")

	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], ErrInvalidInput))
	assert.Equal(t, "'"+txt+"' is not a valid file or directory, or not a supported image format.", warnings[0].Error())
}

func TestDiscover_EmptyDirectory(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	inputs, warnings := Discover([]string{dir}, Options{Recursive: true})
	assert.Empty(t, warnings)
	require.Len(t, inputs, 1)
	assert.Empty(t, inputs[0].Files)
}

func TestOptions_ValidatePatterns(t *testing.T) {
	assert.NoError(t, Options{Include: []string{"**/*.png"}}.ValidatePatterns())
	assert.Error(t, Options{Exclude: []string{"[unclosed"}}.ValidatePatterns())
}

func TestShouldIncludeFile(t *testing.T) {
	assert.True(t, shouldIncludeFile("x/a.png", nil, nil))
	assert.False(t, shouldIncludeFile("x/a.png", nil, []string{"x/**"}))
	assert.True(t, shouldIncludeFile("x/a.png", []string{"a.*"}, nil))
	assert.False(t, shouldIncludeFile("x/a.png", []string{"*.jpg"}, nil))
}

func TestDiscover_KeepsArgumentOrder(t *testing.T) {
	dir := makeTree(t)
	sub := filepath.Join(dir, "sub")
	png := filepath.Join(dir, "a.png")
	require.NoError(t, os.Chmod(png, 0o600))

	inputs, _ := Discover([]string{png, sub}, Options{Recursive: true})
	require.Len(t, inputs, 2)
	assert.Equal(t, png, inputs[0].Arg)
	assert.Equal(t, sub, inputs[1].Arg)
	assert.True(t, inputs[1].Dir)
}
