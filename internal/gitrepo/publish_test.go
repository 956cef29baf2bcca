package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDocsRepo builds a docs repository with one commit on the default
// branch and returns its path plus that branch's name.
func seedDocsRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{Author: sig()})
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	return dir, head.Name().Short()
}

func TestPublishCommitsOnUpdateBranch(t *testing.T) {
	repoPath, base := seedDocsRepo(t)

	outputDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "en"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "en", "FE_configuration.md"), []byte("# docs"), 0644))

	fixed := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	p := &Publisher{
		RepoPath:   repoPath,
		Kind:       "config",
		OutputDir:  outputDir,
		DocFile:    "FE_configuration.md",
		TargetDir:  "docs",
		BaseBranch: base,
		Now:        func() time.Time { return fixed },
	}

	committed, err := p.Publish(context.Background(), []string{"en", "ja"}, true, false)
	require.NoError(t, err)
	assert.True(t, committed)

	repo, err := git.PlainOpen(repoPath)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, "docs/update-config-20260823-120000", head.Name().Short())

	copied, err := os.ReadFile(filepath.Join(repoPath, "docs", "en", "FE_configuration.md"))
	require.NoError(t, err)
	assert.Equal(t, "# docs", string(copied))

	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(commit.Message, "docs(config): update en, ja documentation"))
	assert.Contains(t, commit.Message, "docs/en/FE_configuration.md")
}

func TestPublishWithoutCommitFlagIsNoop(t *testing.T) {
	p := &Publisher{RepoPath: "/nonexistent"}
	committed, err := p.Publish(context.Background(), []string{"en"}, false, false)
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestPublishWithNoOutputsSkipsCommit(t *testing.T) {
	repoPath, base := seedDocsRepo(t)
	p := &Publisher{
		RepoPath:   repoPath,
		Kind:       "config",
		OutputDir:  t.TempDir(),
		DocFile:    "FE_configuration.md",
		TargetDir:  "docs",
		BaseBranch: base,
	}
	committed, err := p.Publish(context.Background(), []string{"en"}, true, false)
	require.NoError(t, err)
	assert.False(t, committed)
}
