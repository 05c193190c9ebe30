package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/panbanda/tangle/internal/cache"
	scannerSvc "github.com/panbanda/tangle/internal/service/scanner"
	"github.com/panbanda/tangle/internal/vcs"
	"github.com/panbanda/tangle/pkg/analyzer"
	"github.com/panbanda/tangle/pkg/config"
	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/source"
)

// ErrNoFiles is returned when a scan finds no source files.
var ErrNoFiles = errors.New("no source files found")

// ProjectOptions configures OpenProject.
type ProjectOptions struct {
	// Ref analyzes a git revision instead of the working tree.
	Ref        string
	OnProgress analyzer.ProgressFunc
	Opener     vcs.Opener
}

// Project is a scanned and loaded file set with the service that analyzes it.
type Project struct {
	Service *Service
	Files   *source.Set
	// Root anchors aliases and relative roots; empty for a revision, whose
	// paths are relative to RepoRoot.
	Root     string
	RepoRoot string
	Revision string
	Commit   string

	paths   []string
	scanner *scannerSvc.Service
}

// OpenProject scans paths, or the tree at opts.Ref, and loads every source
// file. The caller closes the project.
func OpenProject(ctx context.Context, cfg *config.Config, paths []string, opts ProjectOptions) (*Project, error) {
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}
	scanOpts := []scannerSvc.Option{scannerSvc.WithConfig(cfg)}
	if opts.Opener != nil {
		scanOpts = append(scanOpts, scannerSvc.WithOpener(opts.Opener))
	}
	scanner := scannerSvc.New(scanOpts...)

	p := &Project{Revision: opts.Ref, paths: paths, scanner: scanner}
	var files []string
	var src source.ContentSource
	cacheRoot := ""

	if opts.Ref != "" {
		path := "."
		if len(paths) > 0 {
			path = paths[0]
		}
		rev, err := scanner.ScanRevision(path, opts.Ref)
		if err != nil {
			return nil, err
		}
		files = rev.Files
		src = source.NewTree(rev.Tree)
		p.RepoRoot = rev.RepoRoot
		p.Commit = rev.Commit
		cacheRoot = rev.RepoRoot
	} else {
		res, err := scanner.ScanPaths(paths)
		if err != nil {
			return nil, err
		}
		files = res.Files
		p.Root = res.Root
		cacheRoot = res.Root
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	svcOpts := []Option{WithConfig(cfg), WithRoot(p.Root)}
	if cfg.Cache.Enabled && cacheRoot != "" {
		rc, err := OpenResultsCache(cfg, cacheRoot)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, WithResultsCache(rc))
	}
	svc, err := New(svcOpts...)
	if err != nil {
		return nil, err
	}
	set, err := svc.LoadFiles(ctx, files, LoadOptions{Source: src, OnProgress: opts.OnProgress})
	if err != nil {
		return nil, err
	}

	p.Service = svc
	p.Files = set
	slog.Debug("project loaded", "files", set.Len(), "root", p.Root, "revision", p.Revision, "commit", p.Commit)
	return p, nil
}

// DeadCode runs dead-code analysis over the project's files.
func (p *Project) DeadCode(ctx context.Context, opts DeadCodeOptions) (*models.DeadCodeResults, error) {
	return p.Service.AnalyzeDeadCode(ctx, p.Files, opts)
}

// Dependencies runs dependency analysis from root over the project's files.
func (p *Project) Dependencies(ctx context.Context, root string, opts DependencyOptions) (*models.DependencyResults, error) {
	return p.Service.AnalyzeDependencies(ctx, root, p.Files, opts)
}

// Reload rescans the working tree, reloads every file and drops all cached
// metadata. A project opened at a revision cannot be reloaded.
func (p *Project) Reload(ctx context.Context, onProgress analyzer.ProgressFunc) error {
	if p.Revision != "" {
		return fmt.Errorf("cannot reload revision %s", p.Revision)
	}
	res, err := p.scanner.ScanPaths(p.paths)
	if err != nil {
		return err
	}
	if len(res.Files) == 0 {
		return ErrNoFiles
	}
	set, err := p.Service.LoadFiles(ctx, res.Files, LoadOptions{OnProgress: onProgress})
	if err != nil {
		return err
	}
	p.Service.Invalidate()
	p.Files.Close()
	p.Files = set
	return nil
}

// Close releases the parsed trees.
func (p *Project) Close() {
	if p.Files != nil {
		p.Files.Close()
	}
}

// OpenResultsCache opens the configured results directory. A relative
// cache.dir is taken relative to root.
func OpenResultsCache(cfg *config.Config, root string) (*cache.Store, error) {
	dir := cfg.Cache.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return cache.Open(dir, cache.WithTTL(time.Duration(cfg.Cache.TTL)*time.Hour))
}
