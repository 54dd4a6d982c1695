// Package version holds the depchain build version.
package version

// Overridable at build time:
// go build -ldflags "-X depchain/internal/version.Version=1.0.0 -X depchain/internal/version.Commit=abc123"
var (
	// Version is the semantic version of depchain
	Version = "0.4.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version banner printed by `depchain version`.
func Full() string {
	return "depchain version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// UserAgent is sent with every request to remote repository hosts.
func UserAgent() string {
	return "depchain/" + Version
}
