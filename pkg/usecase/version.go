package usecase

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NormalizeVersion strips a single leading "v" from a release tag
func NormalizeVersion(tag string) string {
	return strings.TrimPrefix(tag, "v")
}

// IsDowngrade reports whether latest is an older semantic version than current.
// Versions that do not parse as semver are never reported as a downgrade.
func IsDowngrade(current, latest string) bool {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	next, err := semver.NewVersion(latest)
	if err != nil {
		return false
	}
	return next.LessThan(cur)
}
