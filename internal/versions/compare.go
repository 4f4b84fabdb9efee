// Package versions provides version information for listonic-sync and the
// comparison used to detect state written by a newer release.
package versions

import "github.com/Masterminds/semver/v3"

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
// Development builds ("build-<commit>") and other non-semver strings are never
// ordered, so the result is false whenever either side fails to parse.
func IsNewerVersion(newVersion, oldVersion string) bool {
	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)
	if errNew != nil || errOld != nil {
		return false
	}

	return newSemver.GreaterThan(oldSemver)
}
