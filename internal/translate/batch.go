package translate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	dwerrors "git.home.luguber.info/inful/docweaver/internal/errors"
	"git.home.luguber.info/inful/docweaver/internal/logfields"
)

// DefaultBatchSize caps how many documents share one translation call.
const DefaultBatchSize = 10

// separator yields the positional marker placed between documents of a chunk.
// Markers are chunk-scoped and positionally unique so a confused model answer
// is detectable as a count mismatch instead of being silently mis-split.
func separator(i int) string { return fmt.Sprintf("<!-- SEP_%d -->", i) }

// separatorRE matches any member of the separator family, index wildcarded.
var separatorRE = regexp.MustCompile(`<!--\s*SEP_\d+\s*-->`)

// Batch translates docs from sourceLang to targetLang, preserving order and
// guaranteeing len(result) == len(docs) for every input size including 0.
//
// Documents are processed in chunks of at most batchSize. Each chunk is
// joined with positional separators and translated in a single call; the
// answer is split back on the separator family. A count mismatch or a failed
// chunk call degrades to one call per document, trading cross-document
// terminology consistency for guaranteed forward progress. A failed
// single-document call aborts the whole operation so the caller can skip the
// target language entirely.
func Batch(ctx context.Context, tr Translator, docs []string, sourceLang, targetLang string, batchSize int) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([]string, 0, len(docs))
	total := (len(docs) + batchSize - 1) / batchSize
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[i:end]
		slog.Debug("Translating chunk",
			logfields.Batch(i/batchSize+1),
			slog.Int("batches", total),
			logfields.Count(len(chunk)),
			logfields.SourceLang(sourceLang),
			logfields.TargetLang(targetLang))

		translated, err := translateChunk(ctx, tr, chunk, targetLang)
		if err != nil {
			return nil, err
		}
		out = append(out, translated...)
	}

	// Holds by construction; a violation is a defect in this package.
	if len(out) != len(docs) {
		return nil, dwerrors.New(dwerrors.CategoryInternal, dwerrors.SeverityFatal,
			fmt.Sprintf("batch translation produced %d results for %d documents", len(out), len(docs)))
	}
	return out, nil
}

// translateChunk translates one chunk, falling back to per-document calls on
// any chunk-level failure or split ambiguity.
func translateChunk(ctx context.Context, tr Translator, chunk []string, targetLang string) ([]string, error) {
	if len(chunk) == 1 {
		return translateSingles(ctx, tr, chunk, targetLang)
	}

	combined := joinWithSeparators(chunk)
	translated, err := tr.Translate(ctx, combined, targetLang, true)
	if err != nil {
		slog.Warn("Chunk translation failed, degrading to per-document calls",
			logfields.TargetLang(targetLang), logfields.Count(len(chunk)), logfields.Error(err))
		return translateSingles(ctx, tr, chunk, targetLang)
	}

	parts := splitOnSeparators(translated)
	if len(parts) != len(chunk) {
		slog.Warn("Separator split mismatch, degrading to per-document calls",
			logfields.TargetLang(targetLang),
			slog.Int("expected", len(chunk)),
			slog.Int("got", len(parts)))
		return translateSingles(ctx, tr, chunk, targetLang)
	}
	return parts, nil
}

// translateSingles is the deterministic fallback: one call per document.
func translateSingles(ctx context.Context, tr Translator, chunk []string, targetLang string) ([]string, error) {
	out := make([]string, 0, len(chunk))
	for _, doc := range chunk {
		translated, err := tr.Translate(ctx, doc, targetLang, false)
		if err != nil {
			return nil, fmt.Errorf("single-document translation to %s: %w", targetLang, err)
		}
		out = append(out, strings.TrimSpace(translated))
	}
	return out, nil
}

// joinWithSeparators combines k documents with k-1 positional separators. No
// trailing separator: the last fragment is delimited by end of text.
func joinWithSeparators(docs []string) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
			b.WriteString(separator(i - 1))
			b.WriteString("\n\n")
		}
		b.WriteString(doc)
	}
	return b.String()
}

// splitOnSeparators splits translated text on the separator family, trimming
// fragments and discarding blank ones.
func splitOnSeparators(text string) []string {
	raw := separatorRE.Split(text, -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}
