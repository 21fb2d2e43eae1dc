// Package version reports the build of the wemo binary shown by
// 'wemo version' and in the interactive device list header.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags="-X github.com/muurk/wemo/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/wemo/internal/version.Commit=abc123" ./cmd/wemo
//
// Other builds fall back to the VCS stamp Go embeds in the binary, and
// finally to a dev version named after the process start time.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version of the wemo binary, e.g. v1.2.3 or dev-20250101
	Version = ""
	// Commit is the short git revision, suffixed with -dirty for modified trees
	Commit = ""
)

// shortCommitLen matches git's default abbreviation
const shortCommitLen = 7

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v, c := fromBuildInfo(info)
			if Version == "" {
				Version = v
			}
			if Commit == "" {
				Commit = c
			}
		}
	}

	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo derives a dev version from the commit date and the short
// revision from the vcs settings. Missing settings give empty strings.
func fromBuildInfo(info *debug.BuildInfo) (version, commit string) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; rev != "" {
		if len(rev) > shortCommitLen {
			rev = rev[:shortCommitLen]
		}
		commit = rev
		if settings["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}

	// Build info carries no tags
	if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
		version = "dev-" + t.Format("20060102")
	}

	return version, commit
}

// Full returns the version with its commit, as printed by 'wemo version'
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
