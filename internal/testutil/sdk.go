package testutil

import (
	"path/filepath"
	"testing"
)

// SDKTree describes a fake SDK layout written by WriteSDK.
type SDKTree struct {
	Root string
	// Libraries maps file names below the platform lib dir to their content.
	Libraries map[string]string
	// Templates and Models map relative paths below resource/<tree> to content.
	Templates map[string]string
	Models    map[string]string
}

// DefaultSDKTree returns a small linux SDK with libraries, a stray header and both resource trees.
func DefaultSDKTree(root string) SDKTree {
	return SDKTree{
		Root: root,
		Libraries: map[string]string{
			"libDynamsoftCore.so":           "core-v1",
			"libDynamsoftBarcodeReader.so":  "dbr-v1",
			"nested/libDynamsoftLicense.so": "license-v1",
			"README.txt":                    "not a library",
		},
		Templates: map[string]string{
			"DBR-PresetTemplates.json": `{"templates":[]}`,
		},
		Models: map[string]string{
			"OneDDeblur.data":                       "model-a",
			"sub/DataMatrixQRCodeLocalization.data": "model-b",
		},
	}
}

// WriteSDK materializes tree for the given SDK lib sub-directory (e.g. "lib/linux/x64").
func WriteSDK(t *testing.T, tree SDKTree, libSubdir string) string {
	t.Helper()

	libDir := filepath.Join(tree.Root, filepath.FromSlash(libSubdir))
	for name, content := range tree.Libraries {
		WriteFile(t, filepath.Join(libDir, filepath.FromSlash(name)), content)
	}
	for name, content := range tree.Templates {
		WriteFile(t, filepath.Join(tree.Root, "resource", "Templates", filepath.FromSlash(name)), content)
	}
	for name, content := range tree.Models {
		WriteFile(t, filepath.Join(tree.Root, "resource", "Models", filepath.FromSlash(name)), content)
	}
	return tree.Root
}
