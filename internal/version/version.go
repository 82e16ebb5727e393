// Package version holds build-time version information for batchkit.
package version

import "fmt"

// Set at build time:
// go build -ldflags "-X batchkit/internal/version.Version=1.0.0 -X batchkit/internal/version.Commit=abc123"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// shortCommit is the length of the commit hash shown by Info
const shortCommit = 7

// Build describes the running binary
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Current returns the build information linked into this binary
func Current() Build {
	return Build{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

// Info is the one-line version reported by /health and --version,
// e.g. "0.3.0 (abc1234)". The commit is omitted until one is linked in.
func Info() string {
	if Commit == "unknown" || len(Commit) <= shortCommit {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit[:shortCommit])
}

// Full is the multi-line output of the version command
func Full() string {
	b := Current()
	return fmt.Sprintf("batchkit version %s\nCommit: %s\nBuilt: %s", b.Version, b.Commit, b.BuildDate)
}
