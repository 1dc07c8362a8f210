package version

import "fmt"

var (
	// Version is the main version number.
	Version = "0.1.0"

	// GitCommit is the git commit that was compiled. Set by the linker.
	GitCommit string
)

// FullVersion returns the version with the commit, if known.
func FullVersion() string {
	if GitCommit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
