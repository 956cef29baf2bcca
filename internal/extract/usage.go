package extract

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"git.home.luguber.info/inful/docweaver/internal/logfields"
)

// usageExtensions are the code file types considered by the usage search.
var usageExtensions = map[string]bool{
	".java": true,
	".cpp":  true,
	".h":    true,
	".hpp":  true,
}

// UsageSearch finds, per item identifier, the source files referencing it.
// A reference is a whole-word occurrence in a code file under one of the
// configured paths.
type UsageSearch struct {
	Root  string
	Paths []string // directories relative to Root; Root itself when empty
}

// Search walks the configured paths once and matches every identifier against
// each file. Identifiers with no match are absent from the result. Unreadable
// files are logged and skipped.
func (s *UsageSearch) Search(ctx context.Context, ids []string) (map[string][]string, error) {
	patterns := make(map[string]*regexp.Regexp, len(ids))
	for _, id := range ids {
		patterns[id] = regexp.MustCompile(`\b` + regexp.QuoteMeta(id) + `\b`)
	}

	paths := s.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	found := make(map[string][]string)
	for _, rel := range paths {
		dir := filepath.Join(s.Root, rel)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Warn("Usage search cannot visit path", logfields.Path(path), logfields.Error(err))
				return nil
			}
			if d.IsDir() {
				return ctx.Err()
			}
			if !usageExtensions[filepath.Ext(path)] {
				return nil
			}
			content, readErr := os.ReadFile(path)
			if readErr != nil {
				slog.Warn("Usage search cannot read file", logfields.Path(path), logfields.Error(readErr))
				return nil
			}
			relPath, relErr := filepath.Rel(s.Root, path)
			if relErr != nil {
				relPath = path
			}
			for id, re := range patterns {
				if re.Match(content) {
					found[id] = append(found[id], relPath)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, locs := range found {
		sort.Strings(locs)
	}
	return found, nil
}
