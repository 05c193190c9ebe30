// Package scanner finds the source files an analysis runs over, either on
// disk or in a git revision.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/panbanda/tangle/internal/scanner"
	"github.com/panbanda/tangle/internal/vcs"
	"github.com/panbanda/tangle/pkg/config"
)

// Op names the step a scan failed in.
type Op string

const (
	OpResolve  Op = "resolve"
	OpWalk     Op = "scan"
	OpOpenRepo Op = "open repository at"
	OpRevision Op = "read revision in"
)

// Error is a scan failure at Path.
type Error struct {
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ScanResult lists files on disk. Root is the directory of the first path
// and anchors aliases and ignore globs.
type ScanResult struct {
	Files []string
	Root  string
}

// RevisionResult lists files in a git tree, relative to RepoRoot and
// readable through Tree.
type RevisionResult struct {
	Files    []string
	RepoRoot string
	Revision string
	Commit   string // hash Revision resolved to
	Tree     vcs.Tree
}

// Service scans with one configuration.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

type Option func(*Service)

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) { s.config = cfg }
}

func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) { s.opener = opener }
}

// New uses the git opener and, without WithConfig, the configuration found
// in the working directory.
func New(opts ...Option) *Service {
	s := &Service{opener: vcs.DefaultOpener()}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	return s
}

// ScanPaths walks each path, a directory or a single file, and returns the
// union of source files in first-seen order.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	walker := scanner.NewScanner(s.config)
	res := &ScanResult{}
	seen := make(map[string]struct{})

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, &Error{Op: OpResolve, Path: p, Err: err}
		}
		found, err := walker.ScanDir(abs)
		if err != nil {
			return nil, &Error{Op: OpWalk, Path: p, Err: err}
		}
		if res.Root == "" {
			res.Root = dirOf(abs)
		}
		for _, f := range found {
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				res.Files = append(res.Files, f)
			}
		}
	}
	return res, nil
}

func dirOf(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// ScanRevision lists the source files under path as they were at revision.
// Paths are repo-relative with forward slashes, sorted.
func (s *Service) ScanRevision(path, revision string) (*RevisionResult, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Op: OpResolve, Path: path, Err: err}
	}
	repo, err := s.opener.Open(abs)
	if err != nil {
		return nil, &Error{Op: OpOpenRepo, Path: path, Err: err}
	}
	tree, err := repo.TreeAt(revision)
	if err != nil {
		return nil, &Error{Op: OpRevision, Path: path, Err: err}
	}
	entries, err := tree.Entries()
	if err != nil {
		return nil, &Error{Op: OpRevision, Path: path, Err: err}
	}

	within := subtree(repo.Root(), abs)
	files := slices.DeleteFunc(scanner.NewScanner(s.config).FilterEntries(entries), func(f string) bool {
		return !within(f)
	})
	slices.Sort(files)

	return &RevisionResult{
		Files:    files,
		RepoRoot: repo.Root(),
		Revision: revision,
		Commit:   tree.Commit(),
		Tree:     tree,
	}, nil
}

// subtree matches repo-relative paths under dir.
func subtree(repoRoot, dir string) func(string) bool {
	rel, err := filepath.Rel(repoRoot, dir)
	if err != nil || rel == "." {
		return func(string) bool { return true }
	}
	prefix := filepath.ToSlash(rel) + "/"
	return func(f string) bool { return strings.HasPrefix(f, prefix) }
}
