// Package version reports the checklints build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set from main, which receives them through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the release version. Development builds installed with
// `go install module@version` report the module version instead of "dev".
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && isRelease(info.Main.Version) {
		return info.Main.Version
	}
	return Version
}

func isRelease(v string) bool {
	return v != "" && v != "(devel)"
}

// GetFullVersion returns the version with build details, for example
// "v0.3.1 (commit: abc123, built: 2026-01-02T10:30:00Z, go1.23.4)".
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", GetVersion(), Commit, Date, runtime.Version())
}
