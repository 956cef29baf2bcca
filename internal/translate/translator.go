// Package translate wraps the external translation primitive and the batch
// protocol that maps N documents onto one model call with an exact,
// order-preserving 1:1 result mapping.
package translate

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/llm"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Translator is the external translation boundary. Implementations must
// return an error rather than corrupted or partial output.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string, preserveMarkers bool) (string, error)
}

// CanonicalLang parses a language code into its canonical string form
// ("zh-Hans" stays "zh-Hans", "EN" becomes "en").
func CanonicalLang(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// langLabel renders a language code as "English name (native name)" for use
// in prompts, e.g. "Japanese (日本語)". Unknown codes pass through verbatim.
func langLabel(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	self := display.Self.Name(tag)
	if name == "" {
		return code
	}
	if self != "" && self != name {
		return fmt.Sprintf("%s (%s)", name, self)
	}
	return name
}

// LLMTranslator translates markdown documentation via a chat model.
type LLMTranslator struct {
	client *llm.Client
}

// NewLLMTranslator builds a Translator on top of the shared chat client.
func NewLLMTranslator(client *llm.Client) *LLMTranslator {
	return &LLMTranslator{client: client}
}

func (t *LLMTranslator) systemPrompt(targetLang string) string {
	return fmt.Sprintf(`You are a professional technical translator specializing in database documentation.

Your task is to translate technical documentation into %s.
Requirements:
- Maintain the exact Markdown formatting (headers, lists, code blocks, etc.)
- Keep configuration names unchanged (e.g., query_timeout)
- Keep technical terms in English when appropriate
- Preserve code examples and SQL statements
- Ensure natural and fluent translation
- Keep numbers, units, and default values unchanged

Output only the translated content, no additional commentary.`, langLabel(targetLang))
}

func (t *LLMTranslator) userPrompt(text, targetLang string, preserveMarkers bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following text to %s:\n\n", langLabel(targetLang))
	if preserveMarkers {
		b.WriteString("IMPORTANT: Keep ALL special markers EXACTLY as they are. Do NOT translate, move, or modify HTML comments like <!-- ... -->.\n\n")
	}
	b.WriteString(text)
	b.WriteString("\n\nRemember to preserve Markdown formatting and keep technical terms accurate.")
	return b.String()
}

// Translate implements Translator.
func (t *LLMTranslator) Translate(ctx context.Context, text, targetLang string, preserveMarkers bool) (string, error) {
	out, err := t.client.Chat(ctx, t.systemPrompt(targetLang), t.userPrompt(text, targetLang, preserveMarkers))
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", targetLang, err)
	}
	return out, nil
}
