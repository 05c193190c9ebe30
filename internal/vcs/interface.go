// Package vcs reads source trees out of git history.
package vcs

// Opener opens the repository enclosing a path.
type Opener interface {
	Open(path string) (Repository, error)
}

// Repository resolves revisions of one working copy.
type Repository interface {
	// Root is the top of the working tree.
	Root() string
	// TreeAt resolves a revision (branch, tag, SHA, HEAD~2, ...) to the tree
	// of its commit.
	TreeAt(revision string) (Tree, error)
}

// TreeEntry is one file of a tree, relative to the repository root with
// forward slashes.
type TreeEntry struct {
	Path string
}

// Tree is a snapshot of the repository at one commit.
type Tree interface {
	// Commit is the full hash of the commit the tree belongs to.
	Commit() string
	// Entries lists every file in the tree, recursively.
	Entries() ([]TreeEntry, error)
	// File returns the contents of the file at a repository-relative path.
	File(path string) ([]byte, error)
}
