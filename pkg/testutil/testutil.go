// Package testutil builds in-memory source trees for loader and parser tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// MemTree returns an in-memory filesystem holding files, keyed by path.
func MemTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		Put(t, fs, path, content)
	}
	return fs
}

// Put writes one file into fs, creating parent directories.
func Put(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Paths lists every regular file under root in lexical order.
func Paths(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var paths []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	sort.Strings(paths)
	return paths
}
