package vcs

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoWorktree is returned for bare repositories, which have nothing to
// anchor relative paths to.
var ErrNoWorktree = errors.New("repository has no working tree")

type gitOpener struct{}

// DefaultOpener opens repositories with go-git, searching parent
// directories for .git.
func DefaultOpener() Opener {
	return gitOpener{}
}

func (gitOpener) Open(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		// Detection only looks for a .git entry, so a bare repository
		// has to be opened at its own path.
		repo, err = git.PlainOpen(path)
	}
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return nil, ErrNoWorktree
	}
	if err != nil {
		return nil, err
	}
	return &gitRepository{repo: repo, root: wt.Filesystem.Root()}, nil
}

type gitRepository struct {
	repo *git.Repository
	root string
}

func (r *gitRepository) Root() string { return r.root }

func (r *gitRepository) TreeAt(revision string) (Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", revision, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", hash, err)
	}
	return &gitTree{commit: hash.String(), tree: tree}, nil
}

type gitTree struct {
	commit string
	tree   *object.Tree
}

func (t *gitTree) Commit() string { return t.commit }

func (t *gitTree) Entries() ([]TreeEntry, error) {
	var entries []TreeEntry
	err := t.tree.Files().ForEach(func(f *object.File) error {
		entries = append(entries, TreeEntry{Path: f.Name})
		return nil
	})
	return entries, err
}

func (t *gitTree) File(path string) ([]byte, error) {
	f, err := t.tree.File(path)
	if err != nil {
		return nil, err
	}
	r, err := f.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
