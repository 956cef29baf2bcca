// Package pipeline orchestrates multi-language documentation generation: it
// classifies items by existing documentation, drives generation for
// undocumented items, routes translations through the English pivot, and
// hands the mutated collection to the persister. Strictly single-threaded;
// stage ordering is an invariant because later stages read the mutations of
// earlier ones.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/docweaver/internal/generate"
	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/logfields"
	"git.home.luguber.info/inful/docweaver/internal/translate"
)

const (
	langZh = "zh"
	langEn = "en"
)

// Extractor produces the item collection, merged with any cached metadata.
type Extractor interface {
	Extract(ctx context.Context) ([]item.Item, error)
}

// VersionUpdater fills each item's display-version list, optionally tracking
// versions for items absent from the cache.
type VersionUpdater interface {
	UpdateItemVersions(ctx context.Context, items []item.Item, trackNew bool) (int, error)
}

// Persister writes the grouped documents into templated output files.
type Persister interface {
	Save(items []item.Item, outputDir string, languages []string) error
}

// Publisher commits (and optionally opens a pull request for) the generated
// output. Optional.
type Publisher interface {
	Publish(ctx context.Context, languages []string, commit, createPR bool) (bool, error)
}

// Pipeline is the orchestrator, assembled from injected strategies.
type Pipeline struct {
	Kind       item.Kind
	Extractor  Extractor
	Generator  generate.Generator
	Translator translate.Translator
	Persister  Persister
	Versions   VersionUpdater // optional
	Publisher  Publisher      // optional
	BatchSize  int
}

// Options are the per-run toggles, passed through from the CLI.
type Options struct {
	Languages     []string
	OutputDir     string
	Limit         int    // 0 = no limit; bounds items that still need work
	NameFilter    string // process only the named item when set
	IgnoreFile    string // path to the ignore list; missing file means none
	MetaOnly      bool   // stop after grouping; no generation or translation
	WithoutLLM    bool   // skip generation and translation stages
	TrackVersions bool   // compute versions missing from the cache
	Commit        bool
	CreatePR      bool
}

// Groups is the three-way partition of items by documentation status.
type Groups struct {
	Zh      []item.Item // has a Chinese document (regardless of English)
	EnOnly  []item.Item // has English but no Chinese
	Neither []item.Item // has neither
}

// Run executes the full sequence: extract, version update, group, generate,
// translate (zh-pivoted, then en-only), persist, publish.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{langEn, langZh}
	}
	start := time.Now()
	report := newReport(string(p.Kind), opts.Languages)

	slog.Info("Starting pipeline",
		logfields.RunID(report.RunID),
		logfields.Kind(string(p.Kind)),
		slog.Any("languages", opts.Languages),
		slog.Int("limit", opts.Limit))

	slog.Info("Extracting items", logfields.Stage("extract"))
	items, err := p.Extractor.Extract(ctx)
	if err != nil {
		return report, fmt.Errorf("extract %s items: %w", p.Kind, err)
	}
	if opts.IgnoreFile != "" {
		items = dropIgnored(items, opts.IgnoreFile)
	}
	if opts.NameFilter != "" {
		items = filterByName(items, opts.NameFilter)
	}
	report.Total = len(items)
	slog.Info("Extraction completed", logfields.Stage("extract"), logfields.Count(len(items)))

	if p.Versions != nil {
		updated, err := p.Versions.UpdateItemVersions(ctx, items, opts.TrackVersions)
		if err != nil {
			// Version info is additive; a broken cache or repo must not stop
			// documentation generation.
			slog.Warn("Version update failed, continuing without version info", logfields.Error(err))
		}
		report.VersionsFound = updated
	}

	slog.Info("Grouping items by documentation status", logfields.Stage("group"))
	groups := GroupByStatus(items)
	report.GroupZh = len(groups.Zh)
	report.GroupEnOnly = len(groups.EnOnly)
	report.GroupNone = len(groups.Neither)
	slog.Info("Grouping completed",
		slog.Int("zh", len(groups.Zh)),
		slog.Int("en_only", len(groups.EnOnly)),
		slog.Int("none", len(groups.Neither)))

	if opts.MetaOnly {
		slog.Info("Meta-only mode: skipping generation and translation")
		report.Duration = time.Since(start)
		return report, nil
	}

	if !opts.WithoutLLM {
		if opts.Limit > 0 {
			p.applyLimit(&groups, opts.Limit, len(opts.Languages))
		}

		if len(groups.Neither) > 0 {
			slog.Info("Generating documents", logfields.Stage("generate"), logfields.Count(len(groups.Neither)))
			p.generateForMissing(ctx, groups.Neither, report)
			// Every member now has an English document and follows the
			// English-only route.
			groups.EnOnly = append(groups.EnOnly, groups.Neither...)
			groups.Neither = nil
		}

		if len(groups.Zh) > 0 {
			slog.Info("Translating Chinese-documented items", logfields.Stage("translate_zh"), logfields.Count(len(groups.Zh)))
			p.processWithZh(ctx, groups.Zh, opts.Languages, report)
		}

		if len(groups.EnOnly) > 0 {
			slog.Info("Translating English-documented items", logfields.Stage("translate_en"), logfields.Count(len(groups.EnOnly)))
			p.processWithEn(ctx, groups.EnOnly, opts.Languages, report)
		}
	}

	slog.Info("Saving items", logfields.Stage("persist"), logfields.Count(len(items)), logfields.Path(opts.OutputDir))
	if err := p.Persister.Save(items, opts.OutputDir, opts.Languages); err != nil {
		return report, fmt.Errorf("persist %s items: %w", p.Kind, err)
	}

	if (opts.Commit || opts.CreatePR) && p.Publisher != nil {
		slog.Info("Publishing output", logfields.Stage("publish"))
		committed, err := p.Publisher.Publish(ctx, opts.Languages, opts.Commit, opts.CreatePR)
		if err != nil {
			slog.Warn("Publish failed", logfields.Error(err))
		} else if committed {
			slog.Info("Publish completed")
		}
	}

	report.Duration = time.Since(start)
	slog.Info("Pipeline completed",
		logfields.RunID(report.RunID),
		logfields.Count(report.Total),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

// GroupByStatus strips blank document entries, then partitions items into the
// three routing groups. The groups are pairwise disjoint and cover the input.
func GroupByStatus(items []item.Item) Groups {
	var g Groups
	for _, it := range items {
		stripBlank(it)
		hasZh := hasDoc(it, langZh)
		hasEn := hasDoc(it, langEn)
		switch {
		case hasZh:
			g.Zh = append(g.Zh, it)
		case hasEn:
			g.EnOnly = append(g.EnOnly, it)
		default:
			g.Neither = append(g.Neither, it)
		}
	}
	return g
}

// generateForMissing ensures every member ends with a non-blank English
// document: model output when available, deterministic fallback otherwise.
func (p *Pipeline) generateForMissing(ctx context.Context, items []item.Item, report *Report) {
	for i, it := range items {
		slog.Info("Generating document",
			logfields.Item(it.ID()),
			slog.Int("index", i+1),
			logfields.Count(len(items)))

		doc, err := p.Generator.Generate(ctx, it)
		if err != nil {
			slog.Error("Generation failed, using fallback", logfields.Item(it.ID()), logfields.Error(err))
			doc = ""
		}
		it.SetDocument(langEn, doc)
		if hasDoc(it, langEn) {
			report.Generated++
			continue
		}
		it.SetDocument(langEn, p.Generator.Fallback(it))
		report.FallbackDocs++
	}
}

// processWithZh routes items holding Chinese documentation: zh→en first, then
// en→L for every other requested language. Chinese is never translated
// directly into a third language; English is the mandatory pivot so
// terminology stays consistent across languages.
func (p *Pipeline) processWithZh(ctx context.Context, items []item.Item, languages []string, report *Report) {
	needPivot := contains(languages, langEn)
	if !needPivot {
		// A requested third language still needs the pivot derived.
		for _, lang := range languages {
			if lang != langZh && lang != langEn {
				needPivot = true
				break
			}
		}
	}
	if needPivot {
		p.translateAndUpdate(ctx, items, langZh, langEn, report)
	}
	for _, lang := range languages {
		if lang == langZh || lang == langEn {
			continue
		}
		p.translateAndUpdate(ctx, items, langEn, lang, report)
	}
}

// processWithEn routes items holding only English documentation directly into
// every other requested language.
func (p *Pipeline) processWithEn(ctx context.Context, items []item.Item, languages []string, report *Report) {
	for _, lang := range languages {
		if lang == langEn {
			continue
		}
		p.translateAndUpdate(ctx, items, langEn, lang, report)
	}
}

// translateAndUpdate batch-translates the items still missing targetLang and
// stores the results in place. A failed translation skips the target language
// for this group; the run continues.
func (p *Pipeline) translateAndUpdate(ctx context.Context, items []item.Item, sourceLang, targetLang string, report *Report) {
	var pending []item.Item
	for _, it := range items {
		if !hasDoc(it, targetLang) && hasDoc(it, sourceLang) {
			pending = append(pending, it)
		}
	}
	if len(pending) == 0 {
		slog.Debug("All items already documented", logfields.TargetLang(targetLang))
		return
	}

	docs := make([]string, len(pending))
	for i, it := range pending {
		docs[i] = it.Documents()[sourceLang]
	}

	translated, err := translate.Batch(ctx, p.Translator, docs, sourceLang, targetLang, p.BatchSize)
	if err != nil {
		slog.Error("Translation failed, skipping language for this group",
			logfields.SourceLang(sourceLang),
			logfields.TargetLang(targetLang),
			logfields.Count(len(pending)),
			logfields.Error(err))
		report.recordSkippedLanguage(targetLang)
		return
	}

	for i, it := range pending {
		it.SetDocument(targetLang, translated[i])
	}
	report.recordTranslated(targetLang, len(pending))
	slog.Info("Translation completed",
		logfields.SourceLang(sourceLang),
		logfields.TargetLang(targetLang),
		logfields.Count(len(pending)))
}

// applyLimit keeps only the first limit items that still need work, walking
// the groups in routing order.
func (p *Pipeline) applyLimit(groups *Groups, limit, langCount int) {
	ordered := make([]item.Item, 0, len(groups.Zh)+len(groups.EnOnly)+len(groups.Neither))
	ordered = append(ordered, groups.Zh...)
	ordered = append(ordered, groups.EnOnly...)
	ordered = append(ordered, groups.Neither...)

	if limit >= len(ordered) {
		return
	}

	chosen := make(map[string]bool, limit)
	for _, it := range ordered {
		if len(chosen) >= limit {
			break
		}
		if len(it.Documents()) < langCount {
			chosen[it.ID()] = true
		}
	}

	groups.Zh = filterChosen(groups.Zh, chosen)
	groups.EnOnly = filterChosen(groups.EnOnly, chosen)
	groups.Neither = filterChosen(groups.Neither, chosen)
	slog.Info("Applied processing limit",
		slog.Int("limit", limit),
		slog.Int("zh", len(groups.Zh)),
		slog.Int("en_only", len(groups.EnOnly)),
		slog.Int("none", len(groups.Neither)))
}

func filterChosen(items []item.Item, chosen map[string]bool) []item.Item {
	out := items[:0]
	for _, it := range items {
		if chosen[it.ID()] {
			out = append(out, it)
		}
	}
	return out
}

// dropIgnored removes items named in the ignore file, one identifier per
// line, blank lines skipped. A missing file ignores nothing.
func dropIgnored(items []item.Item, path string) []item.Item {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read ignore file", logfields.Path(path), logfields.Error(err))
		}
		return items
	}
	ignored := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			ignored[name] = true
		}
	}
	if len(ignored) == 0 {
		return items
	}
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if !ignored[it.ID()] {
			out = append(out, it)
		}
	}
	slog.Info("Dropped ignored items", logfields.Path(path), logfields.Count(len(items)-len(out)))
	return out
}

func filterByName(items []item.Item, name string) []item.Item {
	var out []item.Item
	for _, it := range items {
		if it.ID() == name {
			out = append(out, it)
		}
	}
	return out
}

func hasDoc(it item.Item, lang string) bool {
	return strings.TrimSpace(it.Documents()[lang]) != ""
}

func stripBlank(it item.Item) {
	docs := it.Documents()
	for lang, text := range docs {
		if strings.TrimSpace(text) == "" {
			delete(docs, lang)
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
