package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Report is the explicit run summary returned by Run. It replaces any global
// counter state so the orchestrator stays reentrant and testable.
type Report struct {
	RunID string `json:"run_id"`
	Kind  string `json:"kind"`

	Total       int `json:"total"`
	GroupZh     int `json:"group_zh"`
	GroupEnOnly int `json:"group_en_only"`
	GroupNone   int `json:"group_none"`

	Generated     int `json:"generated"`
	FallbackDocs  int `json:"fallback_docs"`
	VersionsFound int `json:"versions_found"`

	TranslatedByLang map[string]int `json:"translated_by_lang"`
	SkippedLanguages []string       `json:"skipped_languages,omitempty"`

	Languages []string      `json:"languages"`
	Duration  time.Duration `json:"duration"`
}

func newReport(kind string, langs []string) *Report {
	return &Report{
		RunID:            uuid.NewString(),
		Kind:             kind,
		TranslatedByLang: make(map[string]int),
		Languages:        langs,
	}
}

func (r *Report) recordTranslated(lang string, n int) {
	if n > 0 {
		r.TranslatedByLang[lang] += n
	}
}

func (r *Report) recordSkippedLanguage(lang string) {
	for _, l := range r.SkippedLanguages {
		if l == lang {
			return
		}
	}
	r.SkippedLanguages = append(r.SkippedLanguages, lang)
}
