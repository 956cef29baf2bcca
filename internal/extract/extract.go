// Package extract parses documentable items out of source files with
// kind-specific regex scanners, and merges the result with previously cached
// metadata so generated documents survive a rescan.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/logfields"
	"git.home.luguber.info/inful/docweaver/internal/util/sets"
)

// Cache is the metadata store the extractor merges against. May be nil.
type Cache interface {
	Load(ctx context.Context, kind item.Kind) ([]item.Item, error)
}

// KindExtractor scans the configured source files of one item kind under the
// source repository root.
type KindExtractor struct {
	Kind        item.Kind
	Root        string
	SourceFiles []string
	Cache       Cache
	Usage       *UsageSearch // optional code-reference search
}

// Extract reads every configured source file, parses items out of it, and
// carries documents, catalog, usage locations, and versions over from the
// cache for items that already exist there. Fresh metadata always wins for
// the remaining fields. Unreadable files are logged and skipped.
func (e *KindExtractor) Extract(ctx context.Context) ([]item.Item, error) {
	var fresh []item.Item
	for _, rel := range e.SourceFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(e.Root, rel)
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Failed to read source file, skipping", logfields.Path(path), logfields.Error(err))
			continue
		}
		parsed, err := e.parse(string(content), rel)
		if err != nil {
			slog.Warn("Failed to parse source file, skipping", logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Debug("Extracted items from file", logfields.Path(rel), logfields.Count(len(parsed)))
		fresh = append(fresh, parsed...)
	}

	if e.Cache != nil {
		cached, err := e.Cache.Load(ctx, e.Kind)
		if err != nil {
			slog.Warn("Failed to load metadata cache", logfields.Kind(string(e.Kind)), logfields.Error(err))
		} else {
			mergeCached(fresh, cached)
		}
	}

	if e.Usage != nil {
		e.applyUsage(ctx, fresh)
	}

	slog.Info("Extraction completed", logfields.Kind(string(e.Kind)), logfields.Count(len(fresh)))
	return fresh, nil
}

// applyUsage refreshes usage locations from a code search. Items the search
// does not find keep whatever the cache carried.
func (e *KindExtractor) applyUsage(ctx context.Context, items []item.Item) {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	found, err := e.Usage.Search(ctx, ids)
	if err != nil {
		slog.Warn("Usage search failed", logfields.Kind(string(e.Kind)), logfields.Error(err))
		return
	}
	for _, it := range items {
		if locs, ok := found[it.ID()]; ok {
			it.SetUsageLocations(locs)
		}
	}
}

func (e *KindExtractor) parse(content, rel string) ([]item.Item, error) {
	switch e.Kind {
	case item.KindConfig:
		return asItems(ParseConfigParams(content, rel)), nil
	case item.KindVariable:
		scope := "Session"
		if strings.Contains(strings.ToLower(filepath.Base(rel)), "global") {
			scope = "Global"
		}
		return asItems(ParseSessionVariables(content, scope)), nil
	case item.KindFunction:
		return asItems(ParseSQLFunctions(content)), nil
	default:
		return nil, fmt.Errorf("no extractor for kind %q", e.Kind)
	}
}

func asItems[T item.Item](in []T) []item.Item {
	out := make([]item.Item, len(in))
	for i, it := range in {
		out[i] = it
	}
	return out
}

// mergeCached copies document state from cached items onto their freshly
// extracted counterparts. Items absent from the fresh scan are dropped.
func mergeCached(fresh, cached []item.Item) {
	byID := make(map[string]item.Item, len(cached))
	for _, it := range cached {
		byID[it.ID()] = it
	}
	carried := 0
	for _, it := range fresh {
		prev, ok := byID[it.ID()]
		if !ok {
			continue
		}
		for lang, text := range prev.Documents() {
			it.SetDocument(lang, text)
		}
		if len(prev.UsageLocations()) > 0 {
			it.SetUsageLocations(prev.UsageLocations())
		}
		if len(prev.Versions()) > 0 {
			it.SetVersions(prev.Versions())
		}
		carryCatalog(it, prev)
		carried++
	}
	slog.Debug("Merged cached metadata", logfields.Count(carried))
}

// carryCatalog preserves the catalog assignment across a rescan; the source
// code never carries it.
func carryCatalog(fresh, cached item.Item) {
	fc, ok1 := fresh.(*item.ConfigParam)
	cc, ok2 := cached.(*item.ConfigParam)
	if ok1 && ok2 && fc.Catalog == "" {
		fc.Catalog = cc.Catalog
	}
	ff, ok1 := fresh.(*item.SQLFunction)
	cf, ok2 := cached.(*item.SQLFunction)
	if ok1 && ok2 && ff.Category == "" {
		ff.Category = cf.Category
	}
}

// ScannerFor returns the full-content identifier scanner for kind, used by
// the version tracker's per-tag batch scan.
func ScannerFor(kind item.Kind) (func(content string) sets.Set[string], error) {
	switch kind {
	case item.KindConfig:
		return ScanConfigIdentifiers, nil
	case item.KindVariable:
		return ScanVariableIdentifiers, nil
	case item.KindFunction:
		return ScanFunctionIdentifiers, nil
	default:
		return nil, fmt.Errorf("no identifier scanner for kind %q", kind)
	}
}
