// Package version determines, across a repository's release-tag history, the
// earliest release containing each item, and collapses the raw per-branch
// result into the compact display form surfaced to readers.
package version

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// branchKey derives the major.minor branch for a release tag. Tags that do
// not parse as versions are ignored by the caller.
func branchKey(v *semver.Version) string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// GroupTagsByBranch groups release tags by major.minor branch, sorts each
// branch's tags ascending, and retains only the most recent keepRecent
// branches. It returns the branch→tags map and the retained branch keys in
// ascending order. Older branches are excluded from tracking entirely.
func GroupTagsByBranch(tags []string, keepRecent int) (map[string][]string, []string) {
	type parsedTag struct {
		raw string
		v   *semver.Version
	}
	byBranch := make(map[string][]parsedTag)
	for _, raw := range tags {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue // not a release tag
		}
		key := branchKey(v)
		byBranch[key] = append(byBranch[key], parsedTag{raw: raw, v: v})
	}

	keys := make([]string, 0, len(byBranch))
	for key := range byBranch {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return branchLess(keys[i], keys[j]) })

	if keepRecent > 0 && len(keys) > keepRecent {
		keys = keys[len(keys)-keepRecent:]
	}

	branches := make(map[string][]string, len(keys))
	for _, key := range keys {
		parsed := byBranch[key]
		sort.Slice(parsed, func(i, j int) bool { return parsed[i].v.LessThan(parsed[j].v) })
		sorted := make([]string, len(parsed))
		for i, p := range parsed {
			sorted[i] = p.raw
		}
		branches[key] = sorted
	}
	return branches, keys
}

// branchLess orders major.minor branch keys numerically.
func branchLess(a, b string) bool {
	va, errA := semver.NewVersion(a + ".0")
	vb, errB := semver.NewVersion(b + ".0")
	if errA != nil || errB != nil {
		return a < b
	}
	return va.LessThan(vb)
}

// SortBranches returns the branch keys in ascending numeric order.
func SortBranches(branches []string) []string {
	out := make([]string, len(branches))
	copy(out, branches)
	sort.Slice(out, func(i, j int) bool { return branchLess(out[i], out[j]) })
	return out
}

// CollapseDisplay reduces one item's raw branch→first-tag map to the display
// list, given the maintained-branch set:
//
//   - a single branch shows its tag;
//   - presence in every maintained branch, each at its initial (patch-zero)
//     release, shows only the earliest tag;
//   - presence in a gap-free run of branches ending at the highest maintained
//     branch drops the tag of that highest branch (backport pattern);
//   - anything else shows one tag per branch, ascending.
func CollapseDisplay(branchTags map[string]string, maintained []string) []string {
	if len(branchTags) == 0 {
		return []string{}
	}

	present := make([]string, 0, len(branchTags))
	for branch := range branchTags {
		present = append(present, branch)
	}
	present = SortBranches(present)

	if len(present) == 1 {
		return []string{branchTags[present[0]]}
	}

	if len(maintained) == 0 {
		maintained = present
	} else {
		maintained = SortBranches(maintained)
	}

	if equalSets(present, maintained) && allInitialReleases(branchTags) {
		return []string{branchTags[present[0]]}
	}

	highestMaintained := maintained[len(maintained)-1]
	if present[len(present)-1] == highestMaintained && contiguous(present, maintained) {
		out := make([]string, 0, len(present)-1)
		for _, branch := range present[:len(present)-1] {
			out = append(out, branchTags[branch])
		}
		return out
	}

	out := make([]string, 0, len(present))
	for _, branch := range present {
		out = append(out, branchTags[branch])
	}
	return out
}

// allInitialReleases reports whether every first-seen tag is its branch's
// initial (patch-zero) release. A non-zero patch anywhere marks a backport,
// which keeps its per-branch tags instead of collapsing to the earliest.
func allInitialReleases(branchTags map[string]string) bool {
	for _, tag := range branchTags {
		v, err := semver.NewVersion(tag)
		if err != nil || v.Patch() != 0 {
			return false
		}
	}
	return true
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

// contiguous reports whether the sorted present branches occupy consecutive
// positions in the sorted maintained list.
func contiguous(present, maintained []string) bool {
	index := make(map[string]int, len(maintained))
	for i, branch := range maintained {
		index[branch] = i
	}
	for i := 0; i+1 < len(present); i++ {
		cur, okCur := index[present[i]]
		next, okNext := index[present[i+1]]
		if !okCur || !okNext || next-cur != 1 {
			return false
		}
	}
	return true
}
