package service

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// IsSemanticVersion checks if a version string follows semantic versioning format.
// Snapshots require exactly three parts: major.minor.patch (optionally with prerelease/build)
func IsSemanticVersion(version string) bool {
	v := ensureVPrefix(version)
	if !semver.IsValid(v) {
		return false
	}

	// semver.IsValid accepts "v1" and "v1.2" shorthands
	core, _, _ := splitVersion(v)
	return len(strings.Split(core, ".")) == 3
}

// ensureVPrefix adds a "v" prefix if not present
func ensureVPrefix(version string) string {
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// splitVersion separates the numeric core of a version from its prerelease
// and build suffixes.
func splitVersion(version string) (core, prerelease, build string) {
	core = strings.TrimPrefix(version, "v")
	if idx := strings.Index(core, "+"); idx != -1 {
		core, build = core[:idx], core[idx+1:]
	}
	if idx := strings.Index(core, "-"); idx != -1 {
		core, prerelease = core[:idx], core[idx+1:]
	}
	return core, prerelease, build
}

// CompareVersions compares two snapshot versions.
// Returns:
//
//	-1 if version1 < version2
//	 0 if version1 == version2
//	+1 if version1 > version2
//
// A semantic version always ranks above one that is not.
func CompareVersions(version1, version2 string) int {
	isSemver1 := IsSemanticVersion(version1)
	isSemver2 := IsSemanticVersion(version2)

	switch {
	case isSemver1 && isSemver2:
		return semver.Compare(ensureVPrefix(version1), ensureVPrefix(version2))
	case isSemver1:
		return 1
	case isSemver2:
		return -1
	default:
		return strings.Compare(version1, version2)
	}
}

// NextPatchVersion returns the version following version for an automatic
// snapshot. A prerelease is promoted to its release; anything else has its
// patch number incremented. Versions that are not semantic restart at
// InitialVersion.
func NextPatchVersion(version string) string {
	if !IsSemanticVersion(version) {
		return InitialVersion
	}

	core, prerelease, _ := splitVersion(version)
	if prerelease != "" {
		return core
	}

	parts := strings.Split(core, ".")
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return InitialVersion
	}
	parts[2] = strconv.Itoa(patch + 1)
	return strings.Join(parts, ".")
}
