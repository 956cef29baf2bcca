package version

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/logfields"
	"git.home.luguber.info/inful/docweaver/internal/util/sets"
)

// TagReader is the read-only view of the source repository the tracker needs.
type TagReader interface {
	// ReleaseTags lists all tag names in the repository.
	ReleaseTags() ([]string, error)
	// FileAtTag returns the content of path at the given tag. A missing file
	// at that tag returns an empty string and no error.
	FileAtTag(tag, path string) (string, error)
	// HeadVersion returns a short identifier of the current HEAD.
	HeadVersion() (string, error)
}

// Scanner extracts the complete identifier set present in one historical
// source file. One scan per (branch, tag, file) keeps the cost independent of
// how many items are being tracked.
type Scanner func(content string) sets.Set[string]

// Tracker resolves first-seen release tags for items and maintains the JSON
// cache.
type Tracker struct {
	repo        TagReader
	scan        Scanner
	sourceFiles []string
	cachePath   string
	keepRecent  int
	forceRescan bool
}

// NewTracker wires a tracker for one item kind.
func NewTracker(repo TagReader, scan Scanner, sourceFiles []string, cachePath string, keepRecent int, forceRescan bool) *Tracker {
	if keepRecent <= 0 {
		keepRecent = 5
	}
	return &Tracker{
		repo:        repo,
		scan:        scan,
		sourceFiles: sourceFiles,
		cachePath:   cachePath,
		keepRecent:  keepRecent,
		forceRescan: forceRescan,
	}
}

// UpdateItemVersions is the entry point used by the pipeline. It loads the
// cache, optionally tracks identifiers absent from it (all identifiers when a
// rescan is forced), collapses each item's raw branch map into the display
// list, and assigns it in place. Returns how many items received version
// info.
func (t *Tracker) UpdateItemVersions(ctx context.Context, items []item.Item, trackNew bool) (int, error) {
	record := LoadRecord(t.cachePath)
	if t.forceRescan {
		record.Versions = make(map[string]map[string]string)
	}

	if trackNew {
		if err := t.trackMissing(ctx, record, items); err != nil {
			return 0, err
		}
	}

	maintained := record.MaintainedBranches()
	updated := 0
	for _, it := range items {
		branchTags := record.Versions[it.ID()]
		display := CollapseDisplay(branchTags, maintained)
		it.SetVersions(display)
		if len(display) > 0 {
			updated++
		}
	}
	slog.Info("Updated item versions", logfields.Count(updated), slog.Int("items", len(items)))
	return updated, nil
}

// trackMissing scans tag history for identifiers the cache does not cover and
// rewrites the cache once at the end.
func (t *Tracker) trackMissing(ctx context.Context, record *Record, items []item.Item) error {
	pendingIDs := sets.New[string]()
	for _, it := range items {
		if _, cached := record.Versions[it.ID()]; !cached {
			pendingIDs.Add(it.ID())
		}
	}
	if pendingIDs.Len() == 0 {
		slog.Info("All items already present in version cache")
		return nil
	}

	tags, err := t.repo.ReleaseTags()
	if err != nil {
		return fmt.Errorf("list release tags: %w", err)
	}
	branches, branchOrder := GroupTagsByBranch(tags, t.keepRecent)
	slog.Info("Tracking versions",
		logfields.Count(pendingIDs.Len()),
		slog.Int("branches", len(branchOrder)),
		slog.Any("maintained", branchOrder))

	found, err := t.findFirstVersions(ctx, pendingIDs, branches, branchOrder)
	if err != nil {
		return err
	}
	for id, branchTags := range found {
		record.Versions[id] = branchTags
	}

	head, err := t.repo.HeadVersion()
	if err != nil {
		slog.Warn("Failed to resolve HEAD for cache metadata", logfields.Error(err))
	}
	record.Metadata = Metadata{
		GitVersion:         head,
		SourceFiles:        t.sourceFiles,
		MaintainedBranches: branchOrder,
	}

	if err := record.Save(t.cachePath); err != nil {
		return err
	}
	slog.Info("Version tracking completed", logfields.Count(len(found)))
	return nil
}

// findFirstVersions walks each maintained branch's tags in ascending order.
// Every tag's source content is fetched and scanned exactly once; the
// identifier set found there is intersected with the branch's still-pending
// set, so the cost is O(tags) extractions regardless of item count. A branch
// stops early once nothing is pending in it.
func (t *Tracker) findFirstVersions(ctx context.Context, ids sets.Set[string], branches map[string][]string, branchOrder []string) (map[string]map[string]string, error) {
	results := make(map[string]map[string]string, ids.Len())
	for id := range ids {
		results[id] = make(map[string]string)
	}

	for _, branch := range branchOrder {
		pending := ids.Clone()
		slog.Debug("Scanning branch", logfields.Branch(branch), logfields.Count(len(branches[branch])))

		for _, tag := range branches[branch] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if pending.Len() == 0 {
				break
			}

			inTag := t.identifiersAtTag(tag)
			foundHere := pending.Intersect(inTag)
			if foundHere.Len() > 0 {
				for id := range foundHere {
					results[id][branch] = tag
				}
				pending.Subtract(foundHere)
				slog.Debug("Found items at tag",
					logfields.Branch(branch), logfields.Tag(tag), logfields.Count(foundHere.Len()))
			}
		}

		if pending.Len() > 0 {
			slog.Debug("Items absent from branch", logfields.Branch(branch), logfields.Count(pending.Len()))
		}
	}

	// Drop identifiers never seen anywhere so the cache doesn't accumulate
	// empty entries.
	for id, branchTags := range results {
		if len(branchTags) == 0 {
			delete(results, id)
		}
	}
	return results, nil
}

// identifiersAtTag scans every configured source file at one tag. Fetch or
// scan failures are logged and that file skipped; tracking never aborts on a
// single bad tag.
func (t *Tracker) identifiersAtTag(tag string) sets.Set[string] {
	inTag := sets.New[string]()
	for _, sourceFile := range t.sourceFiles {
		content, err := t.repo.FileAtTag(tag, sourceFile)
		if err != nil {
			slog.Warn("Failed to read file at tag, skipping",
				logfields.Tag(tag), logfields.Path(sourceFile), logfields.Error(err))
			continue
		}
		if content == "" {
			continue
		}
		for id := range t.scan(content) {
			inTag.Add(id)
		}
	}
	return inTag
}
