package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sig() *object.Signature {
	return &object.Signature{Name: "tester", Email: "tester@localhost", When: time.Now()}
}

// seedRepo builds a repository with two tagged commits: v1 lacks Config.java,
// v2 adds it.
func seedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("readme"), 0644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	first, err := wt.Commit("initial", &git.CommitOptions{Author: sig()})
	require.NoError(t, err)
	_, err = repo.CreateTag("3.1.0", first, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Config.java"), []byte("@ConfField field"), 0644))
	_, err = wt.Add("Config.java")
	require.NoError(t, err)
	second, err := wt.Commit("add config", &git.CommitOptions{Author: sig()})
	require.NoError(t, err)
	_, err = repo.CreateTag("3.2.0", second, &git.CreateTagOptions{
		Tagger:  sig(),
		Message: "release 3.2.0",
	})
	require.NoError(t, err)

	return dir
}

func TestRepoReleaseTags(t *testing.T) {
	repo, err := Open(seedRepo(t))
	require.NoError(t, err)

	tags, err := repo.ReleaseTags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"3.1.0", "3.2.0"}, tags)
}

func TestRepoFileAtTag(t *testing.T) {
	repo, err := Open(seedRepo(t))
	require.NoError(t, err)

	content, err := repo.FileAtTag("3.1.0", "Config.java")
	require.NoError(t, err)
	assert.Empty(t, content, "file absent at a tag is not an error")

	content, err = repo.FileAtTag("3.2.0", "Config.java")
	require.NoError(t, err)
	assert.Equal(t, "@ConfField field", content, "annotated tags resolve to their commit")

	_, err = repo.FileAtTag("9.9.9", "Config.java")
	assert.Error(t, err, "unknown tag is an error")
}

func TestRepoHeadVersion(t *testing.T) {
	repo, err := Open(seedRepo(t))
	require.NoError(t, err)

	head, err := repo.HeadVersion()
	require.NoError(t, err)
	assert.Len(t, head, 8)
}

func TestOpenMissingRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}
