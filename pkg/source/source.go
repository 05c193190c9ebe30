// Package source loads and parses source units from the working tree, an
// in-memory filesystem or a git revision.
package source

import (
	"io/fs"
	"sync"

	"github.com/spf13/afero"

	"github.com/panbanda/tangle/internal/vcs"
)

// ContentSource reads file contents by path.
type ContentSource interface {
	Read(path string) ([]byte, error)
}

// FSSource reads through an afero filesystem.
type FSSource struct {
	fs afero.Fs
}

// NewFS reads from fsys, typically afero.NewMemMapFs in tests.
func NewFS(fsys afero.Fs) *FSSource {
	return &FSSource{fs: fsys}
}

// NewFilesystem reads from the operating system.
func NewFilesystem() *FSSource {
	return NewFS(afero.NewOsFs())
}

func (s *FSSource) Read(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// TreeSource reads blobs of one git tree. go-git trees are not safe for
// concurrent reads, so access is serialized.
type TreeSource struct {
	mu   sync.Mutex
	tree vcs.Tree
}

func NewTree(tree vcs.Tree) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read wraps tree errors in *fs.PathError like the other sources.
func (t *TreeSource) Read(path string) ([]byte, error) {
	t.mu.Lock()
	data, err := t.tree.File(path)
	t.mu.Unlock()
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}
