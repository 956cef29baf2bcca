package version

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docweaver/internal/logfields"
)

// Metadata describes how a version cache was produced.
type Metadata struct {
	GitVersion         string   `json:"git_version"`
	SourceFiles        []string `json:"source_files"`
	MaintainedBranches []string `json:"maintained_branches"`
}

// Record is the persisted version cache: per item identifier, the first
// release tag per maintained branch. A loaded record is authoritative for any
// identifier it already contains; fresh tracking only fills gaps.
type Record struct {
	Metadata Metadata                     `json:"metadata"`
	Versions map[string]map[string]string `json:"versions"`
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{Versions: make(map[string]map[string]string)}
}

// LoadRecord reads a version cache. A missing file yields an empty record; a
// corrupt one is logged and replaced by an empty record rather than aborting
// the run.
func LoadRecord(path string) *Record {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read version cache", logfields.Path(path), logfields.Error(err))
		}
		return NewRecord()
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Warn("Failed to parse version cache, starting empty", logfields.Path(path), logfields.Error(err))
		return NewRecord()
	}
	if rec.Versions == nil {
		rec.Versions = make(map[string]map[string]string)
	}
	slog.Debug("Loaded version cache", logfields.Path(path), logfields.Count(len(rec.Versions)))
	return &rec
}

// Save rewrites the cache file in one shot (whole-file overwrite,
// last-writer-wins).
func (r *Record) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal version cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write version cache: %w", err)
	}
	slog.Debug("Saved version cache", logfields.Path(path), logfields.Count(len(r.Versions)))
	return nil
}

// MaintainedBranches returns the branches recorded in metadata, falling back
// to the union of branches observed across all entries.
func (r *Record) MaintainedBranches() []string {
	if len(r.Metadata.MaintainedBranches) > 0 {
		return SortBranches(r.Metadata.MaintainedBranches)
	}
	seen := make(map[string]bool)
	for _, branchTags := range r.Versions {
		for branch := range branchTags {
			seen[branch] = true
		}
	}
	branches := make([]string, 0, len(seen))
	for branch := range seen {
		branches = append(branches, branch)
	}
	return SortBranches(branches)
}
