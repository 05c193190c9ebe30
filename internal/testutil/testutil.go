// Package testutil builds parsed file sets for analyzer tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/panbanda/tangle/pkg/parser"
	"github.com/panbanda/tangle/pkg/source"
)

// File is a path and its content.
type File struct {
	Path    string
	Content string
}

// F is shorthand for File{path, content}.
func F(path, content string) File {
	return File{Path: path, Content: content}
}

// ParseSet parses files in order into a source.Set. Trees are released when
// the test ends.
func ParseSet(t *testing.T, files ...File) *source.Set {
	t.Helper()
	psr := parser.New()
	defer psr.Close()

	set := source.NewSet()
	for _, f := range files {
		set.Add(source.Parse(psr, f.Path, []byte(f.Content)))
	}
	t.Cleanup(set.Close)
	return set
}

// ParseUnit parses a single file.
func ParseUnit(t *testing.T, path, content string) *source.Unit {
	t.Helper()
	return ParseSet(t, F(path, content)).Units()[0]
}

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// CreateFileTree writes files under root and returns root.
func CreateFileTree(t *testing.T, root string, files ...File) string {
	t.Helper()
	for _, f := range files {
		WriteFile(t, filepath.Join(root, f.Path), f.Content)
	}
	return root
}

// GitRepo creates a repository in a temp dir with one commit per group of
// files, in order, and returns its path.
func GitRepo(t *testing.T, commits ...[]File) string {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("PlainInit() error: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error: %v", err)
	}

	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, files := range commits {
		for _, f := range files {
			WriteFile(t, filepath.Join(root, f.Path), f.Content)
			if _, err := w.Add(f.Path); err != nil {
				t.Fatalf("Add(%s) error: %v", f.Path, err)
			}
		}
		_, err := w.Commit("commit", &git.CommitOptions{
			Author: &object.Signature{
				Name:  "Test",
				Email: "test@example.com",
				When:  when.Add(time.Duration(i) * time.Minute),
			},
		})
		if err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
	}
	return root
}
