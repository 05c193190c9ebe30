package depgraph

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/tangle/pkg/analyzer/metadata"
	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/resolver"
	"github.com/panbanda/tangle/pkg/source"
)

// ReverseMap maps a file to the files importing it, in set order.
type ReverseMap map[string][]string

// BuildReverseMap scans every entry's imports once.
func BuildReverseMap(entries []*metadata.Entry, res resolver.Resolver, files *source.Set) ReverseMap {
	reverse := make(ReverseMap)
	for _, e := range entries {
		for _, target := range targets(e, res, files) {
			reverse[target] = append(reverse[target], e.Path())
		}
	}
	return reverse
}

// Dependents returns the files importing root directly (depth 1) and those
// reaching it only through other files (depth >= 2). No file is in both
// lists, and root is in neither.
func Dependents(reverse ReverseMap, root string, files *source.Set) (direct, transitive []models.DependentItem) {
	direct = []models.DependentItem{}
	transitive = []models.DependentItem{}

	rootIdx, ok := files.Index(root)
	if !ok {
		return direct, transitive
	}

	visited := roaring.New()
	visited.Add(uint32(rootIdx))

	frontier := make([]string, 0, len(reverse[root]))
	for _, importer := range reverse[root] {
		idx, ok := files.Index(importer)
		if !ok || visited.Contains(uint32(idx)) {
			continue
		}
		visited.Add(uint32(idx))
		direct = append(direct, models.DependentItem{FilePath: importer, Depth: 1, Via: root})
		frontier = append(frontier, importer)
	}

	for depth := 2; len(frontier) > 0; depth++ {
		var next []string
		for _, f := range frontier {
			for _, importer := range reverse[f] {
				idx, ok := files.Index(importer)
				if !ok || visited.Contains(uint32(idx)) {
					continue
				}
				visited.Add(uint32(idx))
				transitive = append(transitive, models.DependentItem{FilePath: importer, Depth: depth, Via: f})
				next = append(next, importer)
			}
		}
		frontier = next
	}
	return direct, transitive
}
