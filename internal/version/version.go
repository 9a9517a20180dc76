package version

import (
	"fmt"

	"github.com/MeKo-Tech/pobar/internal/engine/dcv"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String is the one-line version shown by --version.
func String() string {
	engine := "not linked"
	if dcv.Linked {
		engine = "linked"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s, engine: %s)", Version, GitCommit, BuildDate, engine)
}
