package platform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	osLinux   = "linux"
	osDarwin  = "darwin"
	osWindows = "windows"
)

// LinkMode selects how the engine libraries are linked into the binary.
type LinkMode string

const (
	LinkStatic  LinkMode = "static"
	LinkDynamic LinkMode = "dynamic"
)

// ErrUnsupportedPlatform is matched by every error Resolve returns for an unknown OS.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError reports the OS identifier that has no profile.
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported target OS: %q (supported: %s)", e.OS, strings.Join(Supported(), ", "))
}

func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// Profile is the resolved linking and staging description for one OS.
// It carries data only; linking is done by the Go toolchain and staging by package stage.
type Profile struct {
	// OS is the GOOS identifier the profile was resolved for.
	OS string `yaml:"os" json:"os"`
	// LibExt is the shared library extension without the leading dot.
	LibExt string `yaml:"lib_ext" json:"lib_ext"`
	// LinkMode is static or dynamic.
	LinkMode LinkMode `yaml:"link_mode" json:"link_mode"`
	// Libraries are the library names passed to the linker as -l<name>.
	Libraries []string `yaml:"libraries" json:"libraries"`
	// LibSubdir is the SDK-relative directory added to the linker search path.
	LibSubdir string `yaml:"lib_subdir" json:"lib_subdir"`
	// RPaths are runtime loader search paths baked into the binary.
	RPaths []string `yaml:"rpaths,omitempty" json:"rpaths,omitempty"`
	// ExtraLDFLAGS are platform linker flags needed by the C++ bridge.
	ExtraLDFLAGS []string `yaml:"extra_ldflags,omitempty" json:"extra_ldflags,omitempty"`
}

var profiles = map[string]Profile{
	osWindows: {
		OS:       osWindows,
		LibExt:   "dll",
		LinkMode: LinkStatic,
		Libraries: []string{
			"DynamsoftCaptureVisionRouterx64",
			"DynamsoftBarcodeReaderx64",
			"DynamsoftCorex64",
			"DynamsoftLicensex64",
			"DynamsoftUtilityx64",
		},
		LibSubdir: "lib/win",
	},
	osLinux: {
		OS:           osLinux,
		LibExt:       "so",
		LinkMode:     LinkDynamic,
		Libraries:    []string{"DynamsoftBarcodeReader"},
		LibSubdir:    "lib/linux/x64",
		RPaths:       []string{"$ORIGIN"},
		ExtraLDFLAGS: []string{"-lstdc++"},
	},
	osDarwin: {
		OS:           osDarwin,
		LibExt:       "dylib",
		LinkMode:     LinkDynamic,
		Libraries:    []string{"DynamsoftBarcodeReader"},
		LibSubdir:    "lib/mac",
		RPaths:       []string{"@loader_path"},
		ExtraLDFLAGS: []string{"-lc++"},
	},
}

var aliases = map[string]string{
	"macos": osDarwin,
	"mac":   osDarwin,
	"win":   osWindows,
}

// Resolve returns the profile for goos. Unknown identifiers fail with
// an error matching ErrUnsupportedPlatform rather than falling back.
func Resolve(goos string) (Profile, error) {
	id := strings.ToLower(strings.TrimSpace(goos))
	if canonical, ok := aliases[id]; ok {
		id = canonical
	}
	p, ok := profiles[id]
	if !ok {
		return Profile{}, &UnsupportedPlatformError{OS: goos}
	}
	return p.clone(), nil
}

// Supported lists the canonical OS identifiers in sorted order.
func Supported() []string {
	out := make([]string, 0, len(profiles))
	for id := range profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (p Profile) clone() Profile {
	p.Libraries = append([]string(nil), p.Libraries...)
	p.RPaths = append([]string(nil), p.RPaths...)
	p.ExtraLDFLAGS = append([]string(nil), p.ExtraLDFLAGS...)
	return p
}

// Dynamic reports whether the engine is loaded from shared libraries at run time.
func (p Profile) Dynamic() bool {
	return p.LinkMode == LinkDynamic
}

// LibDir joins the SDK root with the profile's library sub-directory.
// The join is textual: sdkRoot may start with ${SRCDIR}/.. which path.Clean would collapse.
func (p Profile) LibDir(sdkRoot string) string {
	return joinSlash(sdkRoot, p.LibSubdir)
}

// LibraryGlob is the doublestar pattern selecting the profile's libraries below a directory.
func (p Profile) LibraryGlob() string {
	return "**/*." + p.LibExt
}

// LDFLAGS renders the linker flags for an SDK rooted at sdkRoot.
// The SDK lib directory is also added as an rpath for dynamic profiles so
// `go run` works before the libraries are staged next to the binary.
func (p Profile) LDFLAGS(sdkRoot string) []string {
	libDir := p.LibDir(sdkRoot)
	flags := []string{"-L" + libDir}
	for _, lib := range p.Libraries {
		flags = append(flags, "-l"+lib)
	}
	if p.Dynamic() {
		for _, rp := range p.RPaths {
			flags = append(flags, "-Wl,-rpath,"+quoteRPath(rp))
		}
		flags = append(flags, "-Wl,-rpath,"+libDir)
	}
	return append(flags, p.ExtraLDFLAGS...)
}

// CFLAGS renders the include flags for an SDK rooted at sdkRoot.
func (p Profile) CFLAGS(sdkRoot string) []string {
	return []string{"-I" + joinSlash(sdkRoot, "include")}
}

func joinSlash(root, rel string) string {
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		return rel
	}
	return root + "/" + rel
}

// quoteRPath single-quotes loader tokens so the shell-like cgo flag parser keeps the '$'.
func quoteRPath(rp string) string {
	if strings.HasPrefix(rp, "$") {
		return "'" + rp + "'"
	}
	return rp
}

// String returns a one-line summary used in log output.
func (p Profile) String() string {
	return fmt.Sprintf("%s (%s link, *.%s from %s)", p.OS, p.LinkMode, p.LibExt, p.LibSubdir)
}
