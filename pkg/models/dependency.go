package models

// DependencyItem is one file or package reached from the analysis root.
// Depth counts hops from the root; DirectImporter is the parent in the
// traversal and is empty at depth 0.
type DependencyItem struct {
	FilePath          string `json:"file" toon:"file"`
	Depth             int    `json:"depth" toon:"depth"`
	IsExternalPackage bool   `json:"is_external_package" toon:"is_external_package"`
	DirectImporter    string `json:"direct_importer,omitempty" toon:"direct_importer,omitempty"`
}

// TypeEntity is an exported type alias or interface.
type TypeEntity struct {
	Name           string     `json:"name" toon:"name"`
	FilePath       string     `json:"file" toon:"file"`
	Line           int        `json:"line" toon:"line"`
	Kind           ExportKind `json:"kind" toon:"kind"`
	Depth          int        `json:"depth" toon:"depth"`
	IsDirectlyUsed bool       `json:"is_directly_used" toon:"is_directly_used"`
}

// DependentItem is a file that imports the analysis root, directly or
// through other files. Via is the file it imports on the way to the root.
type DependentItem struct {
	FilePath string `json:"file" toon:"file"`
	Depth    int    `json:"depth" toon:"depth"`
	Via      string `json:"via" toon:"via"`
}

// DependencyResults is the full dependency analysis of one root file.
type DependencyResults struct {
	Root string `json:"root" toon:"root"`
	// Dependencies are the local files reached from Root in traversal order,
	// Root excluded.
	Dependencies     []DependencyItem `json:"dependencies" toon:"dependencies"`
	ExternalPackages []DependencyItem `json:"external_packages" toon:"external_packages"`
	TypeEntities     []TypeEntity     `json:"type_entities" toon:"type_entities"`
	// TopologicalOrder lists files leaf-first. Files on import cycles are
	// absent; see Cycles.
	TopologicalOrder     []string        `json:"topological_order" toon:"topological_order"`
	Cycles               [][]string      `json:"cycles" toon:"cycles"`
	DirectDependents     []DependentItem `json:"direct_dependents" toon:"direct_dependents"`
	TransitiveDependents []DependentItem `json:"transitive_dependents" toon:"transitive_dependents"`
}

// NewDependencyResults creates an empty, well-formed result for root.
func NewDependencyResults(root string) *DependencyResults {
	return &DependencyResults{
		Root:                 root,
		Dependencies:         []DependencyItem{},
		ExternalPackages:     []DependencyItem{},
		TypeEntities:         []TypeEntity{},
		TopologicalOrder:     []string{},
		Cycles:               [][]string{},
		DirectDependents:     []DependentItem{},
		TransitiveDependents: []DependentItem{},
	}
}
