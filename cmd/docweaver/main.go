package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docweaver/internal/config"
	"git.home.luguber.info/inful/docweaver/internal/extract"
	"git.home.luguber.info/inful/docweaver/internal/generate"
	"git.home.luguber.info/inful/docweaver/internal/gitrepo"
	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/llm"
	"git.home.luguber.info/inful/docweaver/internal/metacache"
	"git.home.luguber.info/inful/docweaver/internal/persist"
	"git.home.luguber.info/inful/docweaver/internal/pipeline"
	"git.home.luguber.info/inful/docweaver/internal/translate"
	"git.home.luguber.info/inful/docweaver/internal/version"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version information and exit"`

	Generate struct {
		Kind          string   `short:"k" help:"Item kind to process (config, function, variable)" required:""`
		Langs         []string `short:"l" help:"Target languages (overrides configuration)"`
		Output        string   `short:"o" help:"Output directory (overrides configuration)"`
		Limit         int      `help:"Process at most N items still needing work"`
		Name          string   `help:"Process only the named item"`
		MetaOnly      bool     `help:"Extract and group only; no generation or translation"`
		NoLLM         bool     `name:"no-llm" help:"Skip generation and translation stages"`
		TrackVersions bool     `help:"Track first-release versions for uncached items"`
		ForceRescan   bool     `help:"Ignore the version cache and rescan tag history"`
		Commit        bool     `help:"Commit generated docs to the docs repository"`
		PR            bool     `name:"pr" help:"Push the update branch and open a GitHub pull request"`
	} `cmd:"" help:"Generate and translate documentation for one item kind"`

	Versions struct {
		Kind        string `short:"k" help:"Item kind to track" required:""`
		ForceRescan bool   `help:"Ignore the version cache and rescan tag history"`
	} `cmd:"" help:"Update first-release version info without touching documents"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.Build})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch ctx.Command() {
	case "generate":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runGenerate(runCtx, cfg); err != nil {
			slog.Error("Generate failed", "error", err)
			os.Exit(1)
		}
	case "versions":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runVersions(runCtx, cfg); err != nil {
			slog.Error("Version tracking failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration file created: %s\n", CLI.Config)
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, cfg *config.Config) error {
	kind := item.Kind(CLI.Generate.Kind)
	spec, ok := cfg.Kind(kind)
	if !ok {
		return fmt.Errorf("kind %q is not configured", kind)
	}

	store, err := metacache.NewStore(filepath.Join(cfg.MetaDir, "items.db"))
	if err != nil {
		return fmt.Errorf("open metadata cache: %w", err)
	}
	defer store.Close()

	pipe, err := buildPipeline(cfg, kind, spec, store, CLI.Generate.ForceRescan, !CLI.Generate.NoLLM && !CLI.Generate.MetaOnly)
	if err != nil {
		return err
	}

	languages := cfg.Languages
	if len(CLI.Generate.Langs) > 0 {
		languages = CLI.Generate.Langs
	}
	outputDir := cfg.Output
	if CLI.Generate.Output != "" {
		outputDir = CLI.Generate.Output
	}

	report, err := pipe.Run(ctx, pipeline.Options{
		Languages:     languages,
		OutputDir:     outputDir,
		Limit:         CLI.Generate.Limit,
		NameFilter:    CLI.Generate.Name,
		IgnoreFile:    filepath.Join(cfg.MetaDir, "ignore.meta"),
		MetaOnly:      CLI.Generate.MetaOnly,
		WithoutLLM:    CLI.Generate.NoLLM,
		TrackVersions: CLI.Generate.TrackVersions,
		Commit:        CLI.Generate.Commit,
		CreatePR:      CLI.Generate.PR,
	})
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

// buildPipeline assembles the orchestrator for one kind from configuration.
// The LLM client is only constructed when a stage will actually call it.
func buildPipeline(cfg *config.Config, kind item.Kind, spec config.KindSpec, store *metacache.Store, forceRescan, withLLM bool) (*pipeline.Pipeline, error) {
	extractor := &extract.KindExtractor{
		Kind:        kind,
		Root:        cfg.SourceRepo,
		SourceFiles: spec.SourceFiles,
		Cache:       store,
	}
	if len(spec.UsagePaths) > 0 {
		extractor.Usage = &extract.UsageSearch{Root: cfg.SourceRepo, Paths: spec.UsagePaths}
	}

	pipe := &pipeline.Pipeline{
		Kind:      kind,
		Extractor: extractor,
		Persister: &cachingPersister{
			inner: &persist.Writer{DocFile: spec.DocFile, TemplateDir: spec.TemplateDir},
			store: store,
			kind:  kind,
		},
		BatchSize: cfg.BatchSize,
	}

	if withLLM {
		client, err := llm.New(llm.Options{
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			APIKeyEnv:      cfg.LLM.APIKeyEnv,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			Temperature:    cfg.LLM.Temperature,
		})
		if err != nil {
			return nil, err
		}
		pipe.Generator = generate.NewLLMGenerator(client)
		pipe.Translator = translate.NewLLMTranslator(client)
	}

	if tracker, err := buildTracker(cfg, kind, spec, forceRescan); err != nil {
		slog.Warn("Version tracking unavailable", "error", err)
	} else {
		pipe.Versions = tracker
	}

	if cfg.DocsRepo != "" {
		pipe.Publisher = &gitrepo.Publisher{
			RepoPath:   cfg.DocsRepo,
			Kind:       string(kind),
			OutputDir:  cfg.Output,
			DocFile:    spec.DocFile,
			TargetDir:  "docs",
			BaseBranch: cfg.Git.BaseBranch,
			GitHubRepo: cfg.Git.GitHubRepo,
			TokenEnv:   cfg.Git.TokenEnv,
		}
	}
	return pipe, nil
}

func buildTracker(cfg *config.Config, kind item.Kind, spec config.KindSpec, forceRescan bool) (*version.Tracker, error) {
	repo, err := gitrepo.Open(cfg.SourceRepo)
	if err != nil {
		return nil, err
	}
	scan, err := extract.ScannerFor(kind)
	if err != nil {
		return nil, err
	}
	cachePath := filepath.Join(cfg.MetaDir, string(kind)+".version")
	return version.NewTracker(repo, scan, spec.SourceFiles, cachePath, cfg.KeepRecentBranches, forceRescan), nil
}

func runVersions(ctx context.Context, cfg *config.Config) error {
	kind := item.Kind(CLI.Versions.Kind)
	spec, ok := cfg.Kind(kind)
	if !ok {
		return fmt.Errorf("kind %q is not configured", kind)
	}

	store, err := metacache.NewStore(filepath.Join(cfg.MetaDir, "items.db"))
	if err != nil {
		return fmt.Errorf("open metadata cache: %w", err)
	}
	defer store.Close()

	extractor := &extract.KindExtractor{
		Kind:        kind,
		Root:        cfg.SourceRepo,
		SourceFiles: spec.SourceFiles,
		Cache:       store,
	}
	items, err := extractor.Extract(ctx)
	if err != nil {
		return err
	}

	tracker, err := buildTracker(cfg, kind, spec, CLI.Versions.ForceRescan)
	if err != nil {
		return err
	}
	updated, err := tracker.UpdateItemVersions(ctx, items, true)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, kind, items); err != nil {
		return fmt.Errorf("save metadata cache: %w", err)
	}
	fmt.Printf("Version info updated for %d of %d items\n", updated, len(items))
	return nil
}

// cachingPersister writes the documentation files and then mirrors the items
// back into the metadata cache, so generated documents survive the next run.
type cachingPersister struct {
	inner pipeline.Persister
	store *metacache.Store
	kind  item.Kind
}

func (c *cachingPersister) Save(items []item.Item, outputDir string, languages []string) error {
	if err := c.inner.Save(items, outputDir, languages); err != nil {
		return err
	}
	if err := c.store.Save(context.Background(), c.kind, items); err != nil {
		return fmt.Errorf("save metadata cache: %w", err)
	}
	return nil
}

func printReport(r *pipeline.Report) {
	fmt.Printf("Run %s completed in %s\n", r.RunID, r.Duration.Round(10*time.Millisecond))
	fmt.Printf("  items: %d (zh: %d, en-only: %d, undocumented: %d)\n", r.Total, r.GroupZh, r.GroupEnOnly, r.GroupNone)
	fmt.Printf("  generated: %d (fallbacks: %d), versions found: %d\n", r.Generated, r.FallbackDocs, r.VersionsFound)
	for lang, n := range r.TranslatedByLang {
		fmt.Printf("  translated %s: %d\n", lang, n)
	}
	for _, lang := range r.SkippedLanguages {
		fmt.Printf("  skipped language: %s\n", lang)
	}
}
