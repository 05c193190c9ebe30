// Package analysis orchestrates loading, dead-code analysis and dependency
// analysis for the CLI and the MCP server.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/panbanda/tangle/internal/cache"
	"github.com/panbanda/tangle/internal/fileproc"
	"github.com/panbanda/tangle/internal/logging"
	"github.com/panbanda/tangle/internal/metrics"
	"github.com/panbanda/tangle/pkg/analyzer"
	"github.com/panbanda/tangle/pkg/analyzer/deadcode"
	"github.com/panbanda/tangle/pkg/analyzer/depgraph"
	"github.com/panbanda/tangle/pkg/config"
	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/resolver"
	"github.com/panbanda/tangle/pkg/source"
)

// Service orchestrates code analysis operations. The file paths it sees are
// either absolute (a working tree scan) or relative to Root (a revision
// scan); aliases and ignore patterns are anchored at Root accordingly.
type Service struct {
	config  *config.Config
	root    string
	engine  *analyzer.Engine
	results *cache.Store
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithRoot sets the project root that alias targets and relative ignore
// patterns are joined to. An empty root leaves them as written.
func WithRoot(root string) Option {
	return func(s *Service) {
		s.root = root
	}
}

// WithEngine sets the analysis engine.
func WithEngine(e *analyzer.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithResultsCache sets the on-disk results cache.
func WithResultsCache(c *cache.Store) Option {
	return func(s *Service) {
		s.results = c
	}
}

// New creates a new analysis service.
func New(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	if s.engine == nil {
		e, err := NewEngine(s.config, s.root)
		if err != nil {
			return nil, err
		}
		s.engine = e
	}
	return s, nil
}

// NewEngine builds an analysis engine from cfg for the project at root.
func NewEngine(cfg *config.Config, root string) (*analyzer.Engine, error) {
	aliases := make(map[string]string, len(cfg.Resolve.Aliases))
	for prefix, target := range cfg.Resolve.Aliases {
		aliases[prefix] = anchor(root, target)
	}
	res := resolver.New(
		resolver.WithAliases(aliases),
		resolver.WithExtensions(cfg.Resolve.Extensions),
		resolver.WithCacheSize(cfg.Resolve.LRUSize),
	)

	ignore := make([]string, 0, len(cfg.DeadCode.Ignore))
	for _, p := range cfg.DeadCode.Ignore {
		ignore = append(ignore, anchorGlob(root, p))
	}
	categories := make([]models.DeadCodeCategory, 0, len(cfg.DeadCode.Categories))
	for _, name := range cfg.DeadCode.Categories {
		c, ok := models.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown dead-code category %q", name)
		}
		categories = append(categories, c)
	}
	classifier, err := deadcode.New(
		deadcode.WithIgnoreFiles(ignore...),
		deadcode.WithIgnoreNames(cfg.DeadCode.IgnoreNames...),
		deadcode.WithUnderscoreArgs(cfg.DeadCode.IgnoreUnderscoreArgs),
		deadcode.WithCategories(categories...),
	)
	if err != nil {
		return nil, err
	}

	return analyzer.NewEngine(analyzer.WithResolver(res), analyzer.WithClassifier(classifier)), nil
}

func anchor(root, target string) string {
	if root == "" || filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(root, target)
}

// anchorGlob joins relative patterns to root. Patterns starting with ** or
// / already match anywhere.
func anchorGlob(root, pattern string) string {
	if root == "" || strings.HasPrefix(pattern, "**") || strings.HasPrefix(pattern, "/") {
		return pattern
	}
	return filepath.ToSlash(root) + "/" + pattern
}

// Engine returns the underlying engine.
func (s *Service) Engine() *analyzer.Engine {
	return s.engine
}

// LoadOptions configures LoadFiles.
type LoadOptions struct {
	// Source reads file contents; the filesystem when nil.
	Source     source.ContentSource
	OnProgress analyzer.ProgressFunc
}

// LoadFiles reads and parses files in parallel into an ordered set. Files
// that cannot be read are kept without a tree and logged; only
// cancellation is an error.
func (s *Service) LoadFiles(ctx context.Context, files []string, opts LoadOptions) (*source.Set, error) {
	defer metrics.ObserveDuration("load", time.Now())

	src := opts.Source
	if src == nil {
		src = source.NewFilesystem()
	}
	if opts.OnProgress != nil {
		tracker := analyzer.NewTracker(opts.OnProgress)
		tracker.SetTotal(len(files))
		ctx = analyzer.WithTracker(ctx, tracker)
	}

	set, errs := fileproc.LoadUnits(ctx, files, src, s.config.DeadCode.MaxFileSize)
	if err := ctx.Err(); err != nil {
		set.Close()
		return nil, err
	}

	for _, f := range errs {
		slog.Debug("file skipped", "path", f.Path, "error", f.Err)
	}
	failed := len(errs)
	metrics.FilesParsed.Add(float64(set.Len() - failed))
	metrics.ParseFailures.Add(float64(failed))
	return set, nil
}

// DeadCodeOptions configures dead code detection.
type DeadCodeOptions struct {
	// Categories restricts the returned lists; all when empty.
	Categories []models.DeadCodeCategory
	NoCache    bool
}

// AnalyzeDeadCode detects unused exports, imports, functions, variables,
// props and arguments.
func (s *Service) AnalyzeDeadCode(ctx context.Context, files *source.Set, opts DeadCodeOptions) (*models.DeadCodeResults, error) {
	log := logging.ForRun("deadcode")
	start := time.Now()
	defer metrics.ObserveDuration("deadcode", start)

	key := s.cacheKey("deadcode", files)
	var results *models.DeadCodeResults
	if cached := s.lookup(key, opts.NoCache); cached != nil {
		var r models.DeadCodeResults
		if json.Unmarshal(cached, &r) == nil {
			results = &r
			log.Debug("results cache hit")
		}
	}

	if results == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := s.engine.AnalyzeDeadCode(files)
		if err != nil {
			return nil, err
		}
		r.FilesAnalyzed = files.Len()
		results = r
		s.store(key, results, opts.NoCache, log)
	}

	for _, c := range models.Categories {
		metrics.Findings.WithLabelValues(string(c)).Set(float64(len(results.ByCategory(c))))
	}
	if len(opts.Categories) > 0 {
		results = results.Only(opts.Categories...)
	}

	log.Info("dead-code analysis complete",
		"files", files.Len(),
		"findings", results.TotalCount,
		"elapsed", time.Since(start))
	return results, nil
}

// DependencyOptions configures dependency analysis.
type DependencyOptions struct {
	NoCache bool
}

// AnalyzeDependencies analyzes what root depends on and what depends on it.
// root is matched against the set by ResolveRoot.
func (s *Service) AnalyzeDependencies(ctx context.Context, root string, files *source.Set, opts DependencyOptions) (*models.DependencyResults, error) {
	log := logging.ForRun("deps")
	start := time.Now()
	defer metrics.ObserveDuration("deps", start)

	path := s.ResolveRoot(root, files)
	key := s.cacheKey("deps", files, path)
	if cached := s.lookup(key, opts.NoCache); cached != nil {
		var r models.DependencyResults
		if json.Unmarshal(cached, &r) == nil {
			log.Debug("results cache hit", "root", path)
			return &r, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := s.engine.AnalyzeDependencies(path, files)
	if err != nil {
		return nil, err
	}
	metrics.GraphNodes.Set(float64(len(results.Dependencies) + 1))
	s.store(key, results, opts.NoCache, log)

	log.Info("dependency analysis complete",
		"root", path,
		"dependencies", len(results.Dependencies),
		"externals", len(results.ExternalPackages),
		"dependents", len(results.DirectDependents)+len(results.TransitiveDependents),
		"elapsed", time.Since(start))
	return results, nil
}

// Graph returns the raw dependency graph of root.
func (s *Service) Graph(root string, files *source.Set) (*depgraph.Graph, error) {
	g, err := s.engine.Graph(s.ResolveRoot(root, files), files)
	if err != nil {
		return nil, err
	}
	metrics.GraphNodes.Set(float64(len(g.Items)))
	metrics.GraphEdges.Set(float64(g.EdgeCount()))
	return g, nil
}

// ResolveRoot maps a user-supplied path to the matching path in files: as
// given, made absolute, or joined to the service root. The input is
// returned unchanged when nothing matches.
func (s *Service) ResolveRoot(root string, files *source.Set) string {
	candidates := []string{root, filepath.Clean(root)}
	if abs, err := filepath.Abs(root); err == nil {
		candidates = append(candidates, abs)
	}
	if s.root != "" {
		candidates = append(candidates, filepath.Join(s.root, root))
	}
	for _, c := range candidates {
		if files.Has(c) {
			return c
		}
	}
	return root
}

// Invalidate drops the in-memory metadata cache and resolver memo.
func (s *Service) Invalidate() {
	s.engine.Invalidate()
}

func (s *Service) cacheKey(analysis string, files *source.Set, params ...string) string {
	settings, _ := json.Marshal(struct {
		Resolve  config.ResolveConfig  `json:"resolve"`
		DeadCode config.DeadCodeConfig `json:"deadcode"`
	}{s.config.Resolve, s.config.DeadCode})
	return cache.Key(analysis, files.Fingerprint(), append(params, s.root, string(settings))...)
}

func (s *Service) lookup(key string, skip bool) []byte {
	if s.results == nil || skip {
		return nil
	}
	data, ok := s.results.Get(key)
	if !ok {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("hit").Inc()
	return data
}

func (s *Service) store(key string, v any, skip bool, log *slog.Logger) {
	if s.results == nil || skip {
		return
	}
	if err := s.results.Put(key, v); err != nil {
		log.Warn("results cache write failed", "error", err)
	}
}
