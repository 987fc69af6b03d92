package internal

import (
	"fmt"
	"strings"
)

const (

	// Name of the tool, used for the command name and log grouping.
	Name = "xcforge"

	// Placeholder shown instead of a version for builds without linker flags.
	localBuild = "(local)"
)

var (
	version   = "" // Release version, with or without a "v" prefix (e.g., "v1.2.3").
	gitCommit = "" // Commit the release was built from (e.g., "a1b2c3d4").

	rawQuiet   = "false" // Whether to enable quiet mode
	rawDebug   = "false" // Whether to enable debug mode
	rawVerbose = "false" // Whether to enable verbose logging
)

// Returns the release version without its "v" prefix, or "" for local builds.
func Version() string {
	return normalizeVersion(version)
}

// Whether the binary was built without release linker flags.
func IsLocal() bool {
	return Version() == "" || strings.TrimSpace(gitCommit) == ""
}

// Returns the version line printed by 'xcforge version'.
//
// Release builds print "xcforge 1.2.3 (a1b2c3d4)"; local builds print
// "xcforge (local)".
func VersionString() string {
	return versionString(version, gitCommit)
}

func versionString(version, commit string) string {
	v, c := normalizeVersion(version), strings.TrimSpace(commit)
	if v == "" || c == "" {
		return Name + " " + localBuild
	}
	return fmt.Sprintf("%s %s (%s)", Name, v, c)
}

func normalizeVersion(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.TrimPrefix(v, "v")
}
