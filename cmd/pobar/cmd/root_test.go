package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pobar/internal/config"
	"github.com/MeKo-Tech/pobar/internal/engine"
	"github.com/MeKo-Tech/pobar/internal/engine/dcv"
	"github.com/MeKo-Tech/pobar/internal/engine/enginetest"
	"github.com/MeKo-Tech/pobar/internal/testutil"
)

// useFake swaps the engine binding for fake for the duration of the test.
func useFake(t *testing.T, fake *enginetest.Fake) {
	t.Helper()
	orig := newNative
	newNative = func() (engine.Native, error) { return fake, nil }
	t.Cleanup(func() { newNative = orig })
}

// isolate runs the test in an empty directory with no config or POBAR_ overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			t.Setenv(strings.SplitN(kv, "=", 2)[0], "")
		}
	}
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "pobar", cmd.Name())
	assert.NotEmpty(t, cmd.Short)
	assert.Empty(t, cmd.Commands(), "file arguments must never collide with subcommands")
}

func TestRootCommandHelp(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--overlay-dir")
	assert.Contains(t, out, "--metrics-file")
}

func TestRootCommandVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "pobar version")
	if !dcv.Linked {
		assert.Contains(t, out, "engine: not linked")
	}
}

func TestRootCommand_NotLinked(t *testing.T) {
	if dcv.Linked {
		t.Skip("built with the native engine")
	}
	isolate(t)
	_, _, err := execute(t, "", "a.png")
	assert.ErrorIs(t, err, dcv.ErrNotLinked)
}

func TestRootCommand_Interactive(t *testing.T) {
	dir := isolate(t)
	testutil.WriteFile(t, filepath.Join(dir, "img1.png"), "x")

	fake := enginetest.New()
	fake.Default = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR("hi")}}
	useFake(t, fake)

	out, _, err := execute(t, "  \"img1.png\"  \nnonexistent.png\nq\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Barcode Text: hi")
	assert.Contains(t, out, "Please input a valid path: nonexistent.png")
	assert.Equal(t, []string{config.TrialLicenseKey}, fake.Licenses())
	assert.Equal(t, 1, fake.Count(enginetest.CallDestroyInstance))
}

func TestRootCommand_BatchWithFlags(t *testing.T) {
	dir := isolate(t)
	img := testutil.WriteFile(t, filepath.Join(dir, "a.png"), "x")

	fake := enginetest.New()
	fake.Default = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR("csv")}}
	useFake(t, fake)

	metricsFile := filepath.Join(dir, "pobar.prom")
	out, _, err := execute(t, "", "--license", "my-key", "-f", "csv", "--metrics-file", metricsFile, img)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "file,index,format,text"))
	assert.Contains(t, out, img+",1,QR_CODE,csv,")
	assert.Equal(t, []string{"my-key"}, fake.Licenses())

	prom := testutil.ReadFile(t, metricsFile)
	assert.Contains(t, prom, `pobar_decodes_total{outcome="found"} 1`)
}

func TestRootCommand_EnvLicense(t *testing.T) {
	dir := isolate(t)
	img := testutil.WriteFile(t, filepath.Join(dir, "a.png"), "x")
	t.Setenv("POBAR_LICENSE_KEY", "env-key")

	fake := enginetest.New()
	useFake(t, fake)

	_, _, err := execute(t, "", img)
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key"}, fake.Licenses())
}

func TestRootCommand_LicenseFailureExitsWithError(t *testing.T) {
	dir := isolate(t)
	img := testutil.WriteFile(t, filepath.Join(dir, "a.png"), "x")

	fake := enginetest.New()
	fake.LicenseCode = -10003
	useFake(t, fake)

	_, errOut, err := execute(t, "", img)
	require.Error(t, err)
	assert.Contains(t, errOut, "License initialization failed with code: -10003")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	isolate(t)
	useFake(t, enginetest.New())

	_, _, err := execute(t, "", "--format", "xml", "a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")

	_, _, err = execute(t, "", "--overlay-color", "red", "a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlay color")
}

func TestRootCommand_ConfigFile(t *testing.T) {
	dir := isolate(t)
	img := testutil.WriteFile(t, filepath.Join(dir, "a.png"), "x")
	cfgFile := testutil.WriteFile(t, filepath.Join(dir, "custom.yaml"), "license_key: file-key\noutput:\n  format: yaml\n")

	fake := enginetest.New()
	useFake(t, fake)

	out, _, err := execute(t, "", "--config", cfgFile, img)
	require.NoError(t, err)
	assert.Contains(t, out, "files:")
	assert.Equal(t, []string{"file-key"}, fake.Licenses())
}

func TestRootCommand_WriteConfig(t *testing.T) {
	dir := isolate(t)
	target := filepath.Join(dir, "pobar.yaml")

	out, _, err := execute(t, "", "--write-config", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+target)
	assert.Contains(t, testutil.ReadFile(t, target), "license_key:")
}

func TestNewRootCommandWithEngine(t *testing.T) {
	dir := isolate(t)
	img := testutil.WriteFile(t, filepath.Join(dir, "a.png"), "x")

	fake := enginetest.New()
	fake.Default = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR("injected")}}

	cmd := NewRootCommandWithEngine(func() (engine.Native, error) { return fake, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{img})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Barcode Text: injected")
	assert.Equal(t, 0, fake.LiveInstances())
}
