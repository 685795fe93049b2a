// Package version reports the incheck build version.
package version

import (
	"runtime/debug"
)

// Version information, overridable at build time with -ldflags -X.
var (
	// Version is the current semantic version of incheck
	Version = "0.3.0"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "incheck " + Version + " (commit: " + Commit() + ", built: " + BuildDate + ")"
}

// Commit returns GitCommit, falling back to the VCS revision embedded by
// the Go toolchain.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return GitCommit
}
