// Package depgraph builds the forward module graph of a root file, orders
// it leaf-first and finds the files that depend on the root.
package depgraph

import (
	"github.com/panbanda/tangle/pkg/analyzer/metadata"
	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/resolver"
	"github.com/panbanda/tangle/pkg/source"
)

// Graph is the forward dependency graph reachable from Root.
type Graph struct {
	Root string
	// Items lists the visited local files in DFS pre-order, Root first.
	Items []models.DependencyItem
	// Adjacency maps an importer to the files it imports, in import order.
	Adjacency map[string][]string
	// Indegree counts the distinct importers of each visited file.
	Indegree     map[string]int
	External     []models.DependencyItem
	TypeEntities []models.TypeEntity
}

func newGraph(root string) *Graph {
	return &Graph{
		Root:         root,
		Items:        []models.DependencyItem{},
		Adjacency:    make(map[string][]string),
		Indegree:     make(map[string]int),
		External:     []models.DependencyItem{},
		TypeEntities: []models.TypeEntity{},
	}
}

// Nodes returns the visited file paths in visit order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, len(g.Items))
	for i, it := range g.Items {
		nodes[i] = it.FilePath
	}
	return nodes
}

// EdgeCount returns the number of distinct importer -> target edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.Adjacency {
		n += len(targets)
	}
	return n
}

// Dependencies returns the visited files without the root.
func (g *Graph) Dependencies() []models.DependencyItem {
	if len(g.Items) <= 1 {
		return []models.DependencyItem{}
	}
	return append([]models.DependencyItem{}, g.Items[1:]...)
}

// entryIndex maps paths to cache entries.
func entryIndex(entries []*metadata.Entry) map[string]*metadata.Entry {
	idx := make(map[string]*metadata.Entry, len(entries))
	for _, e := range entries {
		idx[e.Path()] = e
	}
	return idx
}

// targets returns the local files an entry depends on, in import order and
// without duplicates. Units with precomputed dependencies use those instead
// of resolving specifiers.
func targets(e *metadata.Entry, res resolver.Resolver, files *source.Set) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if p == e.Path() || !files.Has(p) {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	if e.Unit.Dependencies != nil {
		for _, p := range e.Unit.Dependencies {
			add(p)
		}
		return out
	}
	for _, imp := range e.Imports {
		if !res.IsLocal(imp.FromSpecifier) {
			continue
		}
		if p, ok := res.Resolve(e.Path(), imp.FromSpecifier, files); ok {
			add(p)
		}
	}
	return out
}

type builder struct {
	g       *Graph
	entries map[string]*metadata.Entry
	res     resolver.Resolver
	files   *source.Set

	visited  map[string]int
	external map[string]struct{}
	edges    map[[2]string]struct{}
	imported map[string]struct{}
}

// Build walks the graph depth-first from root. A root that is not in
// entries yields an empty graph.
func Build(root string, entries []*metadata.Entry, res resolver.Resolver, files *source.Set) *Graph {
	b := &builder{
		g:        newGraph(root),
		entries:  entryIndex(entries),
		res:      res,
		files:    files,
		visited:  make(map[string]int),
		external: make(map[string]struct{}),
		edges:    make(map[[2]string]struct{}),
		imported: make(map[string]struct{}),
	}
	if _, ok := b.entries[root]; !ok {
		return b.g
	}

	b.visit(root, 0, "")
	b.collectTypeEntities(entries)
	return b.g
}

func (b *builder) visit(path string, depth int, importer string) {
	b.visited[path] = depth
	if _, ok := b.g.Indegree[path]; !ok {
		b.g.Indegree[path] = 0
	}
	b.g.Items = append(b.g.Items, models.DependencyItem{
		FilePath:       path,
		Depth:          depth,
		DirectImporter: importer,
	})

	e := b.entries[path]
	for _, imp := range e.Imports {
		if name := imp.SourceName(); name != "" && name != "*" && name != "default" {
			b.imported[name] = struct{}{}
		}
	}

	for _, imp := range e.Imports {
		if imp.FromSpecifier == "" {
			continue
		}
		if !b.res.IsLocal(imp.FromSpecifier) {
			b.addExternal(imp.FromSpecifier, depth+1, path)
			continue
		}
		if e.Unit.Dependencies != nil {
			continue
		}
		target, ok := b.res.Resolve(path, imp.FromSpecifier, b.files)
		if !ok {
			b.addExternal(imp.FromSpecifier, depth+1, path)
			continue
		}
		// Resolved outside the analyzed set: neither local nor a package.
		if !b.files.Has(target) {
			continue
		}
		b.follow(path, target, depth)
	}

	if e.Unit.Dependencies != nil {
		for _, target := range targets(e, b.res, b.files) {
			b.follow(path, target, depth)
		}
	}
}

func (b *builder) follow(importer, target string, depth int) {
	if target == importer {
		return
	}
	if _, ok := b.entries[target]; !ok {
		return
	}
	key := [2]string{importer, target}
	if _, dup := b.edges[key]; !dup {
		b.edges[key] = struct{}{}
		b.g.Adjacency[importer] = append(b.g.Adjacency[importer], target)
		b.g.Indegree[target]++
	}
	if _, seen := b.visited[target]; !seen {
		b.visit(target, depth+1, importer)
	}
}

func (b *builder) addExternal(specifier string, depth int, importer string) {
	if _, dup := b.external[specifier]; dup {
		return
	}
	b.external[specifier] = struct{}{}
	b.g.External = append(b.g.External, models.DependencyItem{
		FilePath:          specifier,
		Depth:             depth,
		IsExternalPackage: true,
		DirectImporter:    importer,
	})
}

// collectTypeEntities records type exports of visited files, then searches
// the whole set for imported names that no visited file exports as a type.
func (b *builder) collectTypeEntities(all []*metadata.Entry) {
	found := make(map[string]struct{})
	for _, it := range b.g.Items {
		for _, exp := range b.entries[it.FilePath].Exports {
			if !exp.Kind.IsTypeLike() {
				continue
			}
			found[exp.Name] = struct{}{}
			b.g.TypeEntities = append(b.g.TypeEntities, models.TypeEntity{
				Name:     exp.Name,
				FilePath: it.FilePath,
				Line:     exp.Line,
				Kind:     exp.Kind,
				Depth:    it.Depth,
			})
		}
	}
	for i := range b.g.TypeEntities {
		_, used := b.imported[b.g.TypeEntities[i].Name]
		b.g.TypeEntities[i].IsDirectlyUsed = used
	}

	var missing []string
	for _, imp := range b.importOrder() {
		if _, ok := found[imp]; !ok {
			missing = append(missing, imp)
		}
	}
	for _, name := range missing {
		if te, ok := findTypeExport(all, name, b.visited); ok {
			b.g.TypeEntities = append(b.g.TypeEntities, te)
		}
	}
}

// importOrder returns the imported names in the order visited files
// import them.
func (b *builder) importOrder() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, it := range b.g.Items {
		for _, imp := range b.entries[it.FilePath].Imports {
			name := imp.SourceName()
			if _, ok := b.imported[name]; !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func findTypeExport(all []*metadata.Entry, name string, skip map[string]int) (models.TypeEntity, bool) {
	for _, e := range all {
		if _, visited := skip[e.Path()]; visited {
			continue
		}
		for _, exp := range e.Exports {
			if exp.Name == name && exp.Kind.IsTypeLike() {
				return models.TypeEntity{
					Name:           exp.Name,
					FilePath:       e.Path(),
					Line:           exp.Line,
					Kind:           exp.Kind,
					Depth:          1,
					IsDirectlyUsed: true,
				}, true
			}
		}
	}
	return models.TypeEntity{}, false
}
