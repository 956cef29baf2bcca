package version

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/util/sets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo serves tag contents from a map and counts file reads.
type fakeRepo struct {
	tags    []string
	content map[string]string // tag -> file content
	reads   int
}

func (f *fakeRepo) ReleaseTags() ([]string, error) { return f.tags, nil }

func (f *fakeRepo) FileAtTag(tag, _ string) (string, error) {
	f.reads++
	return f.content[tag], nil
}

func (f *fakeRepo) HeadVersion() (string, error) { return "abc1234", nil }

// wordScanner treats the content as a whitespace-separated identifier list.
func wordScanner(content string) sets.Set[string] {
	return sets.New(strings.Fields(content)...)
}

func newTrackedItem(id string) *item.ConfigParam {
	return &item.ConfigParam{Name: id, Type: "int", Scope: "FE"}
}

func historyRepo() *fakeRepo {
	// Three branches, three tags each. item_x first appears at 3.2.1 and
	// stays; item_y never appears.
	return &fakeRepo{
		tags: []string{
			"3.1.0", "3.1.1", "3.1.2",
			"3.2.0", "3.2.1", "3.2.2",
			"3.3.0", "3.3.1", "3.3.2",
		},
		content: map[string]string{
			"3.1.0": "other_item", "3.1.1": "other_item", "3.1.2": "other_item",
			"3.2.0": "other_item", "3.2.1": "other_item item_x", "3.2.2": "other_item item_x",
			"3.3.0": "other_item item_x", "3.3.1": "other_item item_x", "3.3.2": "other_item item_x",
		},
	}
}

func TestBatchFirstVersionDetection(t *testing.T) {
	repo := historyRepo()
	cachePath := filepath.Join(t.TempDir(), "config.version")
	tracker := NewTracker(repo, wordScanner, []string{"Config.java"}, cachePath, 5, false)

	x := newTrackedItem("item_x")
	y := newTrackedItem("item_y")
	updated, err := tracker.UpdateItemVersions(context.Background(), []item.Item{x, y}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, updated)
	// Present in 3.2 and 3.3, contiguous up to the highest maintained
	// branch: the highest branch's tag is collapsed away.
	assert.Equal(t, []string{"3.2.1"}, x.Versions())
	assert.Equal(t, []string{}, y.Versions())

	// One content read per (branch, tag), independent of item count: item_y
	// keeps every branch pending so no branch stops early.
	assert.Equal(t, len(repo.tags), repo.reads)

	// The rewritten cache holds the raw branch map, not the display form.
	rec := LoadRecord(cachePath)
	assert.Equal(t, map[string]string{"3.2": "3.2.1", "3.3": "3.3.0"}, rec.Versions["item_x"])
	_, tracked := rec.Versions["item_y"]
	assert.False(t, tracked, "never-seen items must not pollute the cache")
	assert.Equal(t, "abc1234", rec.Metadata.GitVersion)
	assert.Equal(t, []string{"3.1", "3.2", "3.3"}, rec.Metadata.MaintainedBranches)
}

func TestCachedEntriesAreAuthoritative(t *testing.T) {
	repo := historyRepo()
	cachePath := filepath.Join(t.TempDir(), "config.version")

	seeded := NewRecord()
	seeded.Versions["item_x"] = map[string]string{"3.1": "3.1.2"}
	seeded.Metadata.MaintainedBranches = []string{"3.1", "3.2", "3.3"}
	require.NoError(t, seeded.Save(cachePath))

	tracker := NewTracker(repo, wordScanner, []string{"Config.java"}, cachePath, 5, false)
	x := newTrackedItem("item_x")
	_, err := tracker.UpdateItemVersions(context.Background(), []item.Item{x}, true)
	require.NoError(t, err)

	// The cache wins over what a fresh scan would find.
	assert.Equal(t, []string{"3.1.2"}, x.Versions())
	assert.Zero(t, repo.reads, "nothing pending, nothing scanned")
}

func TestForceRescanOverwritesCache(t *testing.T) {
	repo := historyRepo()
	cachePath := filepath.Join(t.TempDir(), "config.version")

	seeded := NewRecord()
	seeded.Versions["item_x"] = map[string]string{"3.1": "3.1.2"}
	require.NoError(t, seeded.Save(cachePath))

	tracker := NewTracker(repo, wordScanner, []string{"Config.java"}, cachePath, 5, true)
	x := newTrackedItem("item_x")
	_, err := tracker.UpdateItemVersions(context.Background(), []item.Item{x}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"3.2.1"}, x.Versions())
}

func TestTrackingWithoutTrackNewUsesCacheOnly(t *testing.T) {
	repo := historyRepo()
	cachePath := filepath.Join(t.TempDir(), "config.version")
	tracker := NewTracker(repo, wordScanner, []string{"Config.java"}, cachePath, 5, false)

	x := newTrackedItem("item_x")
	updated, err := tracker.UpdateItemVersions(context.Background(), []item.Item{x}, false)
	require.NoError(t, err)

	assert.Zero(t, updated)
	assert.Equal(t, []string{}, x.Versions(), "versions default to empty, never nil")
	assert.Zero(t, repo.reads)
}
