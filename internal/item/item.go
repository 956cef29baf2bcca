// Package item defines the documentable item model shared by every pipeline
// stage. An item is anything with a stable identifier and per-language
// markdown documentation: configuration parameters, SQL functions, session
// variables.
package item

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind selects a concrete item type.
type Kind string

const (
	KindConfig   Kind = "config"
	KindFunction Kind = "function"
	KindVariable Kind = "variable"
)

// Kinds lists all supported item kinds in CLI order.
func Kinds() []Kind { return []Kind{KindConfig, KindFunction, KindVariable} }

// Item is the minimal contract every documentable item satisfies. The
// identifier is unique within a run and fixed per kind (config parameters and
// functions use their name, session variables use their display name).
type Item interface {
	ID() string
	Documents() map[string]string
	SetDocument(lang, text string)
	UsageLocations() []string
	SetUsageLocations(paths []string)
	Versions() []string
	SetVersions(v []string)
}

// DocFields carries the fields common to every item kind: multi-language
// documents, usage locations, and the collapsed display-version list.
// Embedded by the concrete kinds.
type DocFields struct {
	Docs         map[string]string `json:"documents,omitempty"`
	UseLocations []string          `json:"useLocations,omitempty"`
	Version      []string          `json:"version,omitempty"`
}

// Documents returns the per-language document map, allocating it on first use
// so callers can always range and assign.
func (d *DocFields) Documents() map[string]string {
	if d.Docs == nil {
		d.Docs = make(map[string]string)
	}
	return d.Docs
}

// SetDocument stores text under lang. Blank text removes the entry; the
// document map never holds whitespace-only values.
func (d *DocFields) SetDocument(lang, text string) {
	if strings.TrimSpace(text) == "" {
		delete(d.Documents(), lang)
		return
	}
	d.Documents()[lang] = text
}

// HasDocument reports whether a non-blank document exists for lang.
func (d *DocFields) HasDocument(lang string) bool {
	return strings.TrimSpace(d.Documents()[lang]) != ""
}

// StripBlankDocuments removes empty or whitespace-only document entries.
func (d *DocFields) StripBlankDocuments() {
	for lang, text := range d.Docs {
		if strings.TrimSpace(text) == "" {
			delete(d.Docs, lang)
		}
	}
}

func (d *DocFields) UsageLocations() []string         { return d.UseLocations }
func (d *DocFields) SetUsageLocations(paths []string) { d.UseLocations = paths }
func (d *DocFields) Versions() []string               { return d.Version }
func (d *DocFields) SetVersions(v []string) {
	if v == nil {
		v = []string{}
	}
	d.Version = v
}

// ConfigParam is a frontend/backend configuration parameter.
type ConfigParam struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	DefaultValue string `json:"defaultValue"`
	Comment      string `json:"comment,omitempty"`
	Mutable      bool   `json:"mutable"`
	Scope        string `json:"scope"` // "FE" or "BE"
	Define       string `json:"define,omitempty"`
	Catalog      string `json:"catalog,omitempty"`
	DocFields
}

func (c *ConfigParam) ID() string { return c.Name }

// SQLFunction is a built-in SQL function signature.
type SQLFunction struct {
	Name       string `json:"name"`
	Signature  string `json:"signature,omitempty"`
	ReturnType string `json:"returnType,omitempty"`
	Category   string `json:"category,omitempty"`
	DocFields
}

func (f *SQLFunction) ID() string { return f.Name }

// SessionVariable is a session or global variable. The display name ("show")
// is the documented identifier when present; several variables expose a show
// name that differs from the internal field name.
type SessionVariable struct {
	Name         string `json:"name"`
	Show         string `json:"show,omitempty"`
	Type         string `json:"type"`
	DefaultValue string `json:"defaultValue"`
	Comment      string `json:"comment,omitempty"`
	Invisible    bool   `json:"invisible"`
	Scope        string `json:"scope"` // "Session" or "Global"
	DocFields
}

func (v *SessionVariable) ID() string {
	if v.Show != "" {
		return v.Show
	}
	return v.Name
}

// NewOfKind returns a zero item of the concrete type backing kind.
func NewOfKind(kind Kind) (Item, error) {
	switch kind {
	case KindConfig:
		return &ConfigParam{}, nil
	case KindFunction:
		return &SQLFunction{}, nil
	case KindVariable:
		return &SessionVariable{}, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

// Encode serializes an item to JSON.
func Encode(it Item) ([]byte, error) {
	return json.Marshal(it)
}

// Decode deserializes an item of the given kind from JSON.
func Decode(kind Kind, data []byte) (Item, error) {
	it, err := NewOfKind(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, it); err != nil {
		return nil, fmt.Errorf("decode %s item: %w", kind, err)
	}
	return it, nil
}
