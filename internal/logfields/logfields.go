package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyItem     = "item"
	KeyKind     = "kind"
	KeyLang     = "lang"
	KeySource   = "source_lang"
	KeyTarget   = "target_lang"
	KeyBranch   = "branch"
	KeyTag      = "tag"
	KeyBatch    = "batch"
	KeyCount    = "count"
	KeyStage    = "stage"
	KeyPath     = "path"
	KeyRunID    = "run_id"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Item(name string) slog.Attr      { return slog.String(KeyItem, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Lang(l string) slog.Attr         { return slog.String(KeyLang, l) }
func SourceLang(l string) slog.Attr   { return slog.String(KeySource, l) }
func TargetLang(l string) slog.Attr   { return slog.String(KeyTarget, l) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Batch(n int) slog.Attr           { return slog.Int(KeyBatch, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
