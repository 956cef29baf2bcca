// Package persist renders the per-language documentation files: items grouped
// into localized catalog sections, substituted into a language-specific
// template at the $outputs placeholder.
package persist

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/logfields"
	"git.home.luguber.info/inful/docweaver/internal/markdown"
)

// Writer renders one kind's documentation file per language.
type Writer struct {
	// DocFile is the output file name, e.g. "FE_configuration.md".
	DocFile string
	// TemplateDir holds per-language templates at {TemplateDir}/{lang}/{DocFile}.
	// A missing template means the rendered content is written as-is.
	TemplateDir string
}

// Save writes {outputDir}/{lang}/{DocFile} for every requested language.
// Items missing a document for a language are logged and left out; a missing
// document never fails the save.
func (w *Writer) Save(items []item.Item, outputDir string, languages []string) error {
	for _, lang := range languages {
		content := w.render(items, lang)
		final := w.applyTemplate(content, lang)

		outPath := filepath.Join(outputDir, lang, w.DocFile)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(outPath, []byte(final), 0644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		slog.Debug("Saved documentation file", logfields.Lang(lang), logfields.Path(outPath))
	}
	slog.Info("Saved docs", logfields.Count(len(languages)), logfields.Path(outputDir))
	return nil
}

// render concatenates item documents under localized catalog headings, in the
// fixed catalog order, items sorted by identifier within each section.
func (w *Writer) render(items []item.Item, lang string) string {
	byCatalog := make(map[string][]item.Item)
	for _, it := range items {
		byCatalog[catalogOf(it)] = append(byCatalog[catalogOf(it)], it)
	}

	var b strings.Builder
	for _, catalog := range item.Catalogs {
		section := byCatalog[catalog]
		if len(section) == 0 {
			continue
		}
		sort.Slice(section, func(i, j int) bool { return section[i].ID() < section[j].ID() })

		b.WriteString("### " + item.CatalogHeading(catalog, lang) + "\n\n")
		for _, it := range section {
			doc, ok := it.Documents()[lang]
			if !ok || strings.TrimSpace(doc) == "" {
				slog.Warn("Missing document", logfields.Item(it.ID()), logfields.Lang(lang))
				continue
			}
			if !markdown.StartsWithHeading([]byte(doc)) {
				slog.Warn("Document does not begin with a heading, synthesizing one",
					logfields.Item(it.ID()), logfields.Lang(lang),
					slog.String("found_title", markdown.Title([]byte(doc))))
				b.WriteString("#### " + it.ID() + "\n\n")
			}
			b.WriteString(strings.TrimRight(doc, "\n") + "\n\n")
			if versions := it.Versions(); len(versions) > 0 {
				b.WriteString("Introduced in: " + strings.Join(versions, ", ") + "\n\n")
			}
		}
	}
	return b.String()
}

// applyTemplate substitutes the rendered content at the template's $outputs
// placeholder. A missing or unreadable template is logged and the content
// returned unchanged.
func (w *Writer) applyTemplate(content, lang string) string {
	if w.TemplateDir == "" {
		return content
	}
	templatePath := filepath.Join(w.TemplateDir, lang, w.DocFile)
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		slog.Warn("Template not found, writing raw content", logfields.Path(templatePath), logfields.Error(err))
		return content
	}
	return strings.NewReplacer("${outputs}", content, "$outputs", content).Replace(string(tmpl))
}

// catalogOf returns the item's documentation section, defaulting to "Other".
func catalogOf(it item.Item) string {
	catalog := ""
	switch v := it.(type) {
	case *item.ConfigParam:
		catalog = v.Catalog
	case *item.SQLFunction:
		catalog = v.Category
	}
	if !item.IsValidCatalog(catalog) {
		return item.DefaultCatalog
	}
	return catalog
}
