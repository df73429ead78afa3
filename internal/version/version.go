package version

import "fmt"

var (
	// Version is the tool's semantic version, overridden at release time via ldflags.
	Version = "0.1.0"
	// Commit is the short hash of the source commit the binary was built from
	// ("unknown" for local builds).
	Commit = "unknown"
	// BuildTime is the UTC timestamp of the build ("unknown" for local builds).
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("pdfext-kit %s (commit %s, built %s)", Version, Commit, BuildTime)
}
