package config

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
source_repo: /src/repo
kinds:
  config:
    source_files:
      - fe/Config.java
    doc_file: FE_configuration.md
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/src/repo", cfg.SourceRepo)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 5, cfg.KeepRecentBranches)
	assert.Equal(t, []string{"en", "zh"}, cfg.Languages)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, "main", cfg.Git.BaseBranch)

	spec, ok := cfg.Kind(item.KindConfig)
	require.True(t, ok)
	assert.Equal(t, "FE_configuration.md", spec.DocFile)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("SOURCE_HOME", "/opt/source")
	path := writeConfig(t, `
source_repo: ${SOURCE_HOME}
kinds: {}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/source", cfg.SourceRepo)
}

func TestLoadRejectsInvalidKind(t *testing.T) {
	path := writeConfig(t, `
source_repo: /src/repo
kinds:
  widget:
    source_files: [a.java]
    doc_file: widgets.md
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRequiresSourceRepo(t *testing.T) {
	path := writeConfig(t, `
kinds: {}
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))
	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))
}
