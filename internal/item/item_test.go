package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDocumentBlankRemovesEntry(t *testing.T) {
	p := &ConfigParam{Name: "x"}
	p.SetDocument("en", "English doc")
	p.SetDocument("zh", "   \n\t")

	assert.True(t, p.HasDocument("en"))
	assert.False(t, p.HasDocument("zh"))
	_, present := p.Documents()["zh"]
	assert.False(t, present, "blank text never enters the map")

	p.SetDocument("en", "")
	assert.False(t, p.HasDocument("en"))
}

func TestStripBlankDocuments(t *testing.T) {
	p := &ConfigParam{Name: "x", DocFields: DocFields{Docs: map[string]string{
		"en": "kept",
		"zh": "  ",
		"ja": "",
	}}}
	p.StripBlankDocuments()
	assert.Equal(t, map[string]string{"en": "kept"}, p.Documents())
}

func TestSessionVariableIdentifierPrefersShow(t *testing.T) {
	v := &SessionVariable{Name: "queryTimeoutS", Show: "query_timeout"}
	assert.Equal(t, "query_timeout", v.ID())

	v.Show = ""
	assert.Equal(t, "queryTimeoutS", v.ID())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := &ConfigParam{Name: "log_roll_size_mb", Type: "int", DefaultValue: "1024", Mutable: true, Scope: "FE"}
	p.SetDocument("en", "doc")
	p.SetVersions([]string{"3.2.1"})

	data, err := Encode(p)
	require.NoError(t, err)

	decoded, err := Decode(KindConfig, data)
	require.NoError(t, err)
	got, ok := decoded.(*ConfigParam)
	require.True(t, ok)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, got.Mutable)
	assert.Equal(t, "doc", got.Documents()["en"])
	assert.Equal(t, []string{"3.2.1"}, got.Versions())
}

func TestNewOfKindRejectsUnknown(t *testing.T) {
	_, err := NewOfKind(Kind("widget"))
	assert.Error(t, err)
}

func TestCatalogHeadingFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "日志记录", CatalogHeading("Logging", "zh"))
	assert.Equal(t, "Logging", CatalogHeading("Logging", "fr"))
	assert.Equal(t, "Unknown", CatalogHeading("Unknown", "en"))
}
