package config

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// SourceRepo is the git checkout the items are extracted from and whose
	// release-tag history the version tracker scans.
	SourceRepo string `yaml:"source_repo"`

	// DocsRepo is the git checkout generated documentation is published to
	// when committing is requested. Optional.
	DocsRepo string `yaml:"docs_repo,omitempty"`

	// MetaDir holds the metadata cache database and per-kind version caches.
	MetaDir string `yaml:"meta_dir"`

	// Output is the root directory for generated documentation files.
	Output string `yaml:"output"`

	// Languages are the target language codes for a run.
	Languages []string `yaml:"languages"`

	// BatchSize caps how many documents are translated per model call.
	BatchSize int `yaml:"batch_size,omitempty"`

	// KeepRecentBranches bounds version tracking to the most recent N
	// major.minor branches.
	KeepRecentBranches int `yaml:"keep_recent_branches,omitempty"`

	LLM   LLMConfig           `yaml:"llm"`
	Kinds map[string]KindSpec `yaml:"kinds"`
	Git   GitConfig           `yaml:"git,omitempty"`
}

// LLMConfig configures the chat-completions endpoint used for generation and
// translation.
type LLMConfig struct {
	BaseURL        string   `yaml:"base_url,omitempty"`
	Model          string   `yaml:"model,omitempty"`
	APIKeyEnv      string   `yaml:"api_key_env,omitempty"`
	TimeoutSeconds int      `yaml:"timeout_seconds,omitempty"`
	Temperature    *float64 `yaml:"temperature,omitempty"`
}

// KindSpec configures one item kind: where its metadata lives in the source
// repository and where its documentation lands.
type KindSpec struct {
	// SourceFiles are paths, relative to the source repo root, scanned for
	// item definitions (also used for historical tag scans).
	SourceFiles []string `yaml:"source_files"`

	// UsagePaths are directories, relative to the source repo root, searched
	// for code references to each item. Usage search is skipped when empty.
	UsagePaths []string `yaml:"usage_paths,omitempty"`

	// DocFile is the per-language output file name (e.g. BE_configuration.md).
	DocFile string `yaml:"doc_file"`

	// TemplateDir holds per-language template files named like DocFile with a
	// $outputs placeholder. Optional; raw concatenation is used without it.
	TemplateDir string `yaml:"template_dir,omitempty"`
}

// GitConfig configures the optional publish step.
type GitConfig struct {
	BaseBranch string `yaml:"base_branch,omitempty"`
	GitHubRepo string `yaml:"github_repo,omitempty"` // "owner/repo", for PR creation
	TokenEnv   string `yaml:"token_env,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.MetaDir == "" {
		c.MetaDir = "./meta"
	}
	if c.Output == "" {
		c.Output = "./output"
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"en", "zh"}
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.KeepRecentBranches <= 0 {
		c.KeepRecentBranches = 5
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4.1-mini"
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 120
	}
	if c.Git.BaseBranch == "" {
		c.Git.BaseBranch = "main"
	}
	if c.Git.TokenEnv == "" {
		c.Git.TokenEnv = "GITHUB_TOKEN"
	}
}

func (c *Config) validate() error {
	if c.SourceRepo == "" {
		return fmt.Errorf("source_repo is required")
	}
	for name, spec := range c.Kinds {
		if _, err := item.NewOfKind(item.Kind(name)); err != nil {
			return fmt.Errorf("kinds: %w", err)
		}
		if len(spec.SourceFiles) == 0 {
			return fmt.Errorf("kinds.%s: source_files is required", name)
		}
		if spec.DocFile == "" {
			return fmt.Errorf("kinds.%s: doc_file is required", name)
		}
	}
	return nil
}

// Kind returns the spec for an item kind, if configured.
func (c *Config) Kind(kind item.Kind) (KindSpec, bool) {
	spec, ok := c.Kinds[string(kind)]
	return spec, ok
}
