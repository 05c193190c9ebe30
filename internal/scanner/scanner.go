// Package scanner discovers TypeScript and JavaScript source files.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/tangle/internal/vcs"
	"github.com/panbanda/tangle/pkg/config"
	"github.com/panbanda/tangle/pkg/parser"
)

// Scanner finds source files. Configured exclusions match paths relative
// to the scanned directory; .gitignore rules match paths relative to the
// repository that contains it.
type Scanner struct {
	config  *config.Config
	exclude gitignore.Matcher
}

func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var patterns []gitignore.Pattern
	for _, dir := range cfg.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}
	for _, p := range cfg.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	return &Scanner{config: cfg, exclude: gitignore.NewMatcher(patterns)}
}

// IsSource reports whether path has a TypeScript or JavaScript extension.
func IsSource(path string) bool {
	return parser.DetectLanguage(path) != parser.LangUnknown
}

// ignoreRules is the .gitignore matcher of the repository enclosing dir,
// or nil when gitignore support is off or dir is not in a repository.
type ignoreRules struct {
	repo    string
	matcher gitignore.Matcher
}

func (s *Scanner) gitignoreFor(dir string) *ignoreRules {
	if !s.config.Exclude.Gitignore {
		return nil
	}
	repo := enclosingRepo(dir)
	if repo == "" {
		return nil
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(repo), nil)
	if err != nil || len(patterns) == 0 {
		return nil
	}
	return &ignoreRules{repo: repo, matcher: gitignore.NewMatcher(patterns)}
}

func (r *ignoreRules) ignored(abs string, isDir bool) bool {
	if r == nil {
		return false
	}
	rel, err := filepath.Rel(r.repo, abs)
	if err != nil || rel == "." {
		return false
	}
	return r.matcher.Match(split(rel), isDir)
}

func split(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}

// enclosingRepo walks up from start to the first directory holding .git.
func enclosingRepo(start string) string {
	for dir := start; ; {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// within reports whether path lies inside root once both are absolute and
// cleaned.
func within(path, root string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ScanDir walks root, which may also be a single file, and returns the
// source files that survive the exclusions in walk order. Symlinks that
// leave root or dangle are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}
	rules := s.gitignoreFor(absRoot)

	files := make([]string, 0, 256)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		skip := func() error {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil || !within(target, realRoot) {
				return skip()
			}
		}

		rel, _ := filepath.Rel(root, path)
		if rel == "." && d.IsDir() {
			return nil
		}
		abs, _ := filepath.Abs(path)
		if s.exclude.Match(split(rel), d.IsDir()) || rules.ignored(abs, d.IsDir()) {
			return skip()
		}
		if !d.IsDir() && IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// FilterEntries returns the source files of a git tree that survive the
// configured exclusions, in tree order. .gitignore is not consulted since
// ignored files are not committed.
func (s *Scanner) FilterEntries(entries []vcs.TreeEntry) []string {
	var files []string
	for _, e := range entries {
		if !IsSource(e.Path) || s.excludedEntry(e.Path) {
			continue
		}
		files = append(files, e.Path)
	}
	return files
}

// excludedEntry checks path and each of its parent directories, since tree
// listings are flat and cannot be pruned during a walk.
func (s *Scanner) excludedEntry(path string) bool {
	parts := split(path)
	for i := 1; i < len(parts); i++ {
		if s.exclude.Match(parts[:i], true) {
			return true
		}
	}
	return s.exclude.Match(parts, false)
}
