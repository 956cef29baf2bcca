// Package generate produces the initial English document for items that have
// no documentation in any pivot language.
package generate

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/llm"
)

// Generator is the external generation boundary. Generate returns English
// markdown for one item; Fallback must always succeed and is used whenever
// Generate errors or produces a blank document.
type Generator interface {
	Generate(ctx context.Context, it item.Item) (string, error)
	Fallback(it item.Item) string
}

// LLMGenerator drafts documentation from item metadata via a chat model.
type LLMGenerator struct {
	client *llm.Client
}

// NewLLMGenerator builds a Generator on top of the shared chat client.
func NewLLMGenerator(client *llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

const generateSystemPrompt = `You are a technical writer producing reference documentation for a distributed SQL database.

Write one reference entry in English Markdown for the item described by the user.
Requirements:
- Start with a level-2 heading that is exactly the item identifier
- Describe what the item controls and when to change it
- Include type, default value, and scope when provided
- Keep identifiers, defaults, and units verbatim
- No preamble and no closing commentary`

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, it item.Item) (string, error) {
	doc, err := g.client.Chat(ctx, generateSystemPrompt, describeItem(it))
	if err != nil {
		return "", fmt.Errorf("generate doc for %s: %w", it.ID(), err)
	}
	return doc, nil
}

// Fallback implements Generator. The result is a deterministic metadata
// rendering so the stage never leaves an item undocumented.
func (g *LLMGenerator) Fallback(it item.Item) string {
	return FallbackDocument(it)
}

// FallbackDocument renders the minimal English document for an item from its
// metadata alone.
func FallbackDocument(it item.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", it.ID())
	switch v := it.(type) {
	case *item.ConfigParam:
		fmt.Fprintf(&b, "- Type: %s\n- Default: %s\n- Mutable: %t\n- Scope: %s\n", v.Type, v.DefaultValue, v.Mutable, v.Scope)
		if v.Comment != "" {
			fmt.Fprintf(&b, "\n%s\n", v.Comment)
		}
	case *item.SessionVariable:
		fmt.Fprintf(&b, "- Type: %s\n- Default: %s\n- Scope: %s\n", v.Type, v.DefaultValue, v.Scope)
		if v.Comment != "" {
			fmt.Fprintf(&b, "\n%s\n", v.Comment)
		}
	case *item.SQLFunction:
		if v.Signature != "" {
			fmt.Fprintf(&b, "```sql\n%s\n```\n", v.Signature)
		}
		if v.ReturnType != "" {
			fmt.Fprintf(&b, "\nReturns: %s\n", v.ReturnType)
		}
	default:
		b.WriteString("Documentation is not yet available for this item.\n")
	}
	return b.String()
}

// describeItem flattens item metadata into the user prompt.
func describeItem(it item.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identifier: %s\n", it.ID())
	switch v := it.(type) {
	case *item.ConfigParam:
		fmt.Fprintf(&b, "Kind: configuration parameter\nType: %s\nDefault: %s\nMutable: %t\nScope: %s\n", v.Type, v.DefaultValue, v.Mutable, v.Scope)
		if v.Comment != "" {
			fmt.Fprintf(&b, "Source comment: %s\n", v.Comment)
		}
	case *item.SessionVariable:
		fmt.Fprintf(&b, "Kind: session variable\nType: %s\nDefault: %s\nScope: %s\n", v.Type, v.DefaultValue, v.Scope)
		if v.Comment != "" {
			fmt.Fprintf(&b, "Source comment: %s\n", v.Comment)
		}
	case *item.SQLFunction:
		fmt.Fprintf(&b, "Kind: SQL function\nSignature: %s\nReturns: %s\nCategory: %s\n", v.Signature, v.ReturnType, v.Category)
	}
	if locs := it.UsageLocations(); len(locs) > 0 {
		fmt.Fprintf(&b, "Used at: %s\n", strings.Join(locs, ", "))
	}
	return b.String()
}
