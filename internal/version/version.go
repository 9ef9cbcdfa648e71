// Package version contains version information for the tfevents application.
package version

import (
	"fmt"
	"runtime"
)

// Version information
const (
	// Major version component
	Major = 0
	// Minor version component
	Minor = 1
	// Patch version component
	Patch = 0
)

// Commit is set at build time with -ldflags "-X tfevents/internal/version.Commit=..."
var Commit = "unknown"

// Full returns the full version string
func Full() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}

// Info returns detailed version information as a multi-line string
func Info() string {
	return fmt.Sprintf("tfevents %s\ncommit: %s\ngo: %s %s/%s",
		Full(), Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
