package gitrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/docweaver/internal/logfields"
)

// Publisher commits generated documentation into the docs repository on a
// fresh branch, and optionally pushes it and opens a GitHub pull request.
type Publisher struct {
	// RepoPath is the local docs repository clone.
	RepoPath string
	// Kind names the item kind for branch and commit messages.
	Kind string
	// OutputDir is where the persister wrote {lang}/{DocFile}.
	OutputDir string
	// DocFile is the per-language file name.
	DocFile string
	// TargetDir is the directory inside the docs repository receiving the
	// files, e.g. "docs".
	TargetDir string
	// BaseBranch is the branch new update branches start from.
	BaseBranch string
	// GitHubRepo is the "owner/repo" slug for pull requests. Empty disables
	// PR creation.
	GitHubRepo string
	// TokenEnv names the environment variable holding the GitHub token.
	TokenEnv string

	// Now and HTTPClient are overridable for tests.
	Now        func() time.Time
	HTTPClient *http.Client
}

// Publish copies the persisted files onto a docs/update-{kind}-{timestamp}
// branch and commits them. With createPR it also pushes the branch and opens
// a pull request. Returns whether a commit was created. Push and PR failures
// are logged, not returned: the commit already holds the work.
func (p *Publisher) Publish(ctx context.Context, languages []string, commit, createPR bool) (bool, error) {
	if !commit {
		return false, nil
	}

	repo, err := git.PlainOpen(p.RepoPath)
	if err != nil {
		return false, fmt.Errorf("open docs repository %s: %w", p.RepoPath, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}

	base := p.BaseBranch
	if base == "" {
		base = "main"
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(base)}); err != nil {
		slog.Warn("Base branch not found, branching from current HEAD",
			logfields.Branch(base), logfields.Error(err))
	}

	branch := fmt.Sprintf("docs/update-%s-%s", p.Kind, p.now().Format("20060102-150405"))
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}); err != nil {
		return false, fmt.Errorf("create branch %s: %w", branch, err)
	}
	slog.Info("Created docs update branch", logfields.Branch(branch))

	changed, err := p.copyOutputs(wt, languages)
	if err != nil {
		return false, err
	}
	if len(changed) == 0 {
		slog.Warn("No output files to publish, skipping commit")
		return false, nil
	}

	msg := commitMessage(p.Kind, changed, languages)
	if _, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "docweaver", Email: "docweaver@localhost", When: p.now()},
	}); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	slog.Info("Committed documentation update", logfields.Branch(branch), logfields.Count(len(changed)))

	if createPR {
		if err := p.pushAndOpenPR(ctx, repo, branch, base, languages); err != nil {
			slog.Warn("Failed to open pull request", logfields.Error(err))
		}
	}
	return true, nil
}

// copyOutputs copies {OutputDir}/{lang}/{DocFile} into the docs repository
// and stages each file. Missing sources are logged and skipped.
func (p *Publisher) copyOutputs(wt *git.Worktree, languages []string) ([]string, error) {
	var changed []string
	for _, lang := range languages {
		src := filepath.Join(p.OutputDir, lang, p.DocFile)
		content, err := os.ReadFile(src)
		if err != nil {
			slog.Warn("Output file not found, skipping", logfields.Path(src), logfields.Error(err))
			continue
		}
		rel := filepath.Join(p.TargetDir, lang, p.DocFile)
		dst := filepath.Join(p.RepoPath, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return nil, fmt.Errorf("create target directory: %w", err)
		}
		if err := os.WriteFile(dst, content, 0644); err != nil {
			return nil, fmt.Errorf("copy %s: %w", src, err)
		}
		if _, err := wt.Add(rel); err != nil {
			return nil, fmt.Errorf("stage %s: %w", rel, err)
		}
		changed = append(changed, rel)
	}
	return changed, nil
}

func (p *Publisher) pushAndOpenPR(ctx context.Context, repo *git.Repository, branch, base string, languages []string) error {
	token := os.Getenv(p.TokenEnv)
	if token == "" {
		return fmt.Errorf("environment variable %s not set", p.TokenEnv)
	}
	if p.GitHubRepo == "" {
		return fmt.Errorf("no GitHub repository configured")
	}

	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       &githttp.BasicAuth{Username: "x-access-token", Password: token},
	})
	if err != nil {
		return fmt.Errorf("push branch %s: %w", branch, err)
	}
	slog.Info("Pushed branch", logfields.Branch(branch))

	url, err := p.openPullRequest(ctx, token, branch, base, languages)
	if err != nil {
		return err
	}
	slog.Info("Opened pull request", slog.String("url", url))
	return nil
}

// openPullRequest creates the PR through the GitHub REST API.
func (p *Publisher) openPullRequest(ctx context.Context, token, branch, base string, languages []string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"title": fmt.Sprintf("docs(%s): update %s documentation", p.Kind, strings.Join(languages, ", ")),
		"body":  fmt.Sprintf("Automated documentation update for %s items.", p.Kind),
		"head":  branch,
		"base":  base,
	})
	if err != nil {
		return "", fmt.Errorf("marshal pull request payload: %w", err)
	}

	api := fmt.Sprintf("https://api.github.com/repos/%s/pulls", p.GitHubRepo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build pull request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create pull request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("create pull request: status %d: %s", resp.StatusCode, body)
	}
	var pr struct {
		HTMLURL string `json:"html_url"`
	}
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", fmt.Errorf("decode pull request response: %w", err)
	}
	return pr.HTMLURL, nil
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func commitMessage(kind string, changed, languages []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "docs(%s): update %s documentation\n\n", kind, strings.Join(languages, ", "))
	fmt.Fprintf(&b, "Updated %d file(s):\n", len(changed))
	for _, file := range changed {
		fmt.Fprintf(&b, "- %s\n", file)
	}
	return b.String()
}
