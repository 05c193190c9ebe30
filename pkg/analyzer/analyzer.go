// Package analyzer ties extraction, graph building and classification
// together behind an Engine.
package analyzer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/panbanda/tangle/pkg/analyzer/deadcode"
	"github.com/panbanda/tangle/pkg/analyzer/depgraph"
	"github.com/panbanda/tangle/pkg/analyzer/metadata"
	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/resolver"
	"github.com/panbanda/tangle/pkg/source"
)

// ErrCacheDesync is returned when the metadata cache has no entry for a unit
// of the analysed set.
var ErrCacheDesync = errors.New("metadata cache out of sync with file set")

// Resolver is a path resolver whose memo can be purged.
type Resolver interface {
	resolver.Resolver
	Reset()
}

// MetadataCache holds extraction results for the most recent file set.
// *metadata.Cache is the implementation used outside tests.
type MetadataCache interface {
	Build(set *source.Set) []*metadata.Entry
	Lookup(u *source.Unit) (*metadata.Entry, bool)
	Entries() []*metadata.Entry
	Invalidate()
	Extractions() int64
}

// Engine runs analyses over file sets. It owns a metadata cache and a
// resolver, and is safe for concurrent use.
type Engine struct {
	mu          sync.Mutex
	cache       MetadataCache
	resolver    Resolver
	classifier  *deadcode.Classifier
	fingerprint string
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithResolver sets the path resolver.
func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithClassifier sets the dead-code classifier.
func WithClassifier(c *deadcode.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithCache sets the metadata cache.
func WithCache(c MetadataCache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// NewEngine creates an Engine with a fresh cache, a default resolver and
// the default classifier.
func NewEngine(opts ...Option) *Engine {
	c, _ := deadcode.New()
	e := &Engine{
		cache:      metadata.NewCache(),
		resolver:   resolver.New(),
		classifier: c,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the engine's metadata cache.
func (e *Engine) Cache() MetadataCache {
	return e.cache
}

// entries builds or reuses the cache for files and checks that every unit
// has an entry.
func (e *Engine) entries(files *source.Set) ([]*metadata.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if fp := files.Fingerprint(); fp != e.fingerprint {
		e.resolver.Reset()
		e.fingerprint = fp
	}

	entries := e.cache.Build(files)
	if len(entries) != files.Len() {
		return nil, fmt.Errorf("%w: %d entries for %d files", ErrCacheDesync, len(entries), files.Len())
	}
	for _, u := range files.Units() {
		if _, ok := e.cache.Lookup(u); !ok {
			return nil, fmt.Errorf("%w: no entry for %s", ErrCacheDesync, u.Path)
		}
	}
	return entries, nil
}

// AnalyzeDeadCode classifies every declaration in files.
func (e *Engine) AnalyzeDeadCode(files *source.Set) (*models.DeadCodeResults, error) {
	if files.Len() == 0 {
		return models.NewDeadCodeResults(), nil
	}
	entries, err := e.entries(files)
	if err != nil {
		return nil, err
	}
	return e.classifier.Classify(entries), nil
}

// AnalyzeDependencies builds the dependency graph of root, orders it and
// finds root's dependents. A root outside files yields an empty result.
func (e *Engine) AnalyzeDependencies(root string, files *source.Set) (*models.DependencyResults, error) {
	results := models.NewDependencyResults(root)
	if !files.Has(root) {
		return results, nil
	}
	entries, err := e.entries(files)
	if err != nil {
		return nil, err
	}

	g := depgraph.Build(root, entries, e.resolver, files)
	results.Dependencies = g.Dependencies()
	results.ExternalPackages = g.External
	results.TypeEntities = g.TypeEntities
	results.TopologicalOrder = depgraph.TopoSort(g)
	results.Cycles = depgraph.Cycles(g)

	reverse := depgraph.BuildReverseMap(entries, e.resolver, files)
	results.DirectDependents, results.TransitiveDependents = depgraph.Dependents(reverse, root, files)
	return results, nil
}

// Graph returns the raw dependency graph of root, for exporters that need
// the adjacency list.
func (e *Engine) Graph(root string, files *source.Set) (*depgraph.Graph, error) {
	entries, err := e.entries(files)
	if err != nil {
		return nil, err
	}
	return depgraph.Build(root, entries, e.resolver, files), nil
}

// Invalidate drops the metadata cache and the resolver memo.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Invalidate()
	e.resolver.Reset()
	e.fingerprint = ""
}
