package gitrepo

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// LatestTag returns the newest tag under version ordering: tags are version
// sorted and the last one wins. Tags that do not parse as versions sort
// before every valid version, lexicographically among themselves, so a
// stray non-release tag never shadows a real release.
// Returns an empty string when no tags are given.
func LatestTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	sorted := append([]string(nil), tags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareTags(sorted[i], sorted[j]) < 0
	})

	return sorted[len(sorted)-1]
}

// compareTags orders two tag names. Valid versions compare by semver
// precedence; a valid version always outranks an invalid one.
func compareTags(a, b string) int {
	va, vb := canonicalTag(a), canonicalTag(b)
	validA, validB := semver.IsValid(va), semver.IsValid(vb)

	switch {
	case validA && validB:
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		// Same precedence (e.g. "2.0.0" vs "v2.0.0"): fall back to the raw name.
		return strings.Compare(a, b)
	case validA:
		return 1
	case validB:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// canonicalTag normalizes a tag name for semver comparison.
// Upstream releases may be tagged with or without a leading "v".
func canonicalTag(tag string) string {
	if strings.HasPrefix(tag, "v") {
		return tag
	}

	return "v" + tag
}
