// Package gitrepo wraps go-git access to the source repository (tag history
// reads for version tracking) and the docs repository (branch, commit, pull
// request publishing).
package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a read-only view of a local clone, serving tag listings and
// historical file content to the version tracker.
type Repo struct {
	repo *git.Repository
}

// Open opens an existing local repository.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

// ReleaseTags lists all tag names in the repository.
func (r *Repo) ReleaseTags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// FileAtTag returns the content of path at the given tag. A file absent at
// that tag yields an empty string and no error; other failures are returned.
func (r *Repo) FileAtTag(tag, path string) (string, error) {
	commit, err := r.commitAtTag(tag)
	if err != nil {
		return "", err
	}
	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve %s at %s: %w", path, tag, err)
	}
	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("read %s at %s: %w", path, tag, err)
	}
	return content, nil
}

// commitAtTag resolves both lightweight and annotated tags to their commit.
func (r *Repo) commitAtTag(tag string) (*object.Commit, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if err != nil {
		return nil, fmt.Errorf("resolve tag %s: %w", tag, err)
	}
	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return nil, fmt.Errorf("resolve annotated tag %s: %w", tag, err)
		}
		return commit, nil
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("resolve commit for tag %s: %w", tag, err)
	}
	return commit, nil
}

// HeadVersion returns the short hash of the current HEAD.
func (r *Repo) HeadVersion() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String()[:8], nil
}
