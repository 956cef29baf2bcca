package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		SourceRepo:         "${SOURCE_HOME}",
		DocsRepo:           "${DOCS_HOME}",
		MetaDir:            "./meta",
		Output:             "./output",
		Languages:          []string{"en", "zh", "ja"},
		BatchSize:          10,
		KeepRecentBranches: 5,
		LLM: LLMConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4.1-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Kinds: map[string]KindSpec{
			"config": {
				SourceFiles: []string{
					"fe/fe-core/src/main/java/com/starrocks/common/Config.java",
				},
				DocFile:     "FE_configuration.md",
				TemplateDir: "docs/templates",
			},
			"variable": {
				SourceFiles: []string{
					"fe/fe-core/src/main/java/com/starrocks/qe/SessionVariable.java",
					"fe/fe-core/src/main/java/com/starrocks/qe/GlobalVariable.java",
				},
				DocFile:     "System_variable.md",
				TemplateDir: "docs/templates",
			},
		},
		Git: GitConfig{
			BaseBranch: "main",
			GitHubRepo: "example/docs",
			TokenEnv:   "GITHUB_TOKEN",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
