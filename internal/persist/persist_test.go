package persist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configItem(name, catalog, lang, doc string) *item.ConfigParam {
	p := &item.ConfigParam{Name: name, Type: "int", Scope: "FE", Catalog: catalog}
	p.SetDocument(lang, doc)
	return p
}

func TestSaveRendersCatalogSectionsInOrder(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{DocFile: "FE_configuration.md"}

	items := []item.Item{
		configItem("b_param", "Storage", "en", "## b_param\n\nStorage knob."),
		configItem("a_param", "Storage", "en", "## a_param\n\nAnother storage knob."),
		configItem("log_param", "Logging", "en", "## log_param\n\nLogging knob."),
	}
	require.NoError(t, w.Save(items, outDir, []string{"en"}))

	data, err := os.ReadFile(filepath.Join(outDir, "en", "FE_configuration.md"))
	require.NoError(t, err)
	content := string(data)

	logging := indexOf(t, content, "### Logging")
	storage := indexOf(t, content, "### Storage")
	assert.Less(t, logging, storage, "catalog order is fixed, Logging before Storage")

	aPos := indexOf(t, content, "## a_param")
	bPos := indexOf(t, content, "## b_param")
	assert.Less(t, aPos, bPos, "items sorted by identifier within a section")
}

func TestSaveLocalizesHeadingsAndSkipsMissingDocs(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{DocFile: "FE_configuration.md"}

	withDoc := configItem("documented", "Logging", "zh", "## documented\n\n中文文档。")
	withoutDoc := &item.ConfigParam{Name: "undocumented", Catalog: "Logging"}

	require.NoError(t, w.Save([]item.Item{withDoc, withoutDoc}, outDir, []string{"zh"}))

	data, err := os.ReadFile(filepath.Join(outDir, "zh", "FE_configuration.md"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "### 日志记录")
	assert.Contains(t, content, "中文文档")
	assert.NotContains(t, content, "undocumented")
}

func TestSaveSynthesizesHeadingAndVersions(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{DocFile: "variables.md"}

	v := &item.SessionVariable{Name: "query_timeout", Type: "int", Scope: "Session"}
	v.SetDocument("en", "Timeout for one query, in seconds.")
	v.SetVersions([]string{"3.2.1", "3.3.0"})

	require.NoError(t, w.Save([]item.Item{v}, outDir, []string{"en"}))

	data, err := os.ReadFile(filepath.Join(outDir, "en", "variables.md"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "#### query_timeout", "headless docs get a synthesized heading")
	assert.Contains(t, content, "Introduced in: 3.2.1, 3.3.0")
}

func TestSaveAppliesTemplate(t *testing.T) {
	outDir := t.TempDir()
	templateDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(templateDir, "en"), 0755))
	tmpl := "---\ntitle: FE configuration\n---\n\nIntro text.\n\n${outputs}\nFooter.\n"
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "en", "FE_configuration.md"), []byte(tmpl), 0644))

	w := &Writer{DocFile: "FE_configuration.md", TemplateDir: templateDir}
	items := []item.Item{configItem("x", "Logging", "en", "## x\n\nDoc.")}
	require.NoError(t, w.Save(items, outDir, []string{"en"}))

	data, err := os.ReadFile(filepath.Join(outDir, "en", "FE_configuration.md"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "title: FE configuration")
	assert.Contains(t, content, "## x")
	assert.Contains(t, content, "Footer.")
	assert.NotContains(t, content, "${outputs}")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in output", needle)
	return idx
}
