package models

import "sort"

// ExportKind classifies an exported symbol.
type ExportKind string

const (
	ExportValue     ExportKind = "value"
	ExportType      ExportKind = "type"
	ExportInterface ExportKind = "interface"
)

func (k ExportKind) String() string { return string(k) }

// IsTypeLike reports whether the export is a type alias or an interface.
func (k ExportKind) IsTypeLike() bool {
	return k == ExportType || k == ExportInterface
}

// ExportRecord is one exported symbol of a file.
type ExportRecord struct {
	Name      string     `json:"name" toon:"name"`
	Line      int        `json:"line" toon:"line"`
	Kind      ExportKind `json:"kind" toon:"kind"`
	IsDefault bool       `json:"is_default,omitempty" toon:"is_default,omitempty"`
}

// ImportRecord is one imported binding of a file. FromSpecifier is the raw
// module string before resolution.
type ImportRecord struct {
	// Name is the local binding name.
	Name string `json:"name" toon:"name"`
	// ImportedName is the name exported by the target module: "default" for
	// default imports and "*" for namespace imports.
	ImportedName  string `json:"imported_name,omitempty" toon:"imported_name,omitempty"`
	FromSpecifier string `json:"from" toon:"from"`
	Line          int    `json:"line" toon:"line"`
	IsTypeOnly    bool   `json:"is_type_only,omitempty" toon:"is_type_only,omitempty"`
	// IsReExport marks `export { x } from '...'` and `export * from '...'`.
	IsReExport bool `json:"is_re_export,omitempty" toon:"is_re_export,omitempty"`
	// IsSideEffect marks `import '...'`, which binds nothing.
	IsSideEffect bool `json:"is_side_effect,omitempty" toon:"is_side_effect,omitempty"`
	IsDynamic    bool `json:"is_dynamic,omitempty" toon:"is_dynamic,omitempty"`
	IsRequire    bool `json:"is_require,omitempty" toon:"is_require,omitempty"`
}

// IsBinding reports whether the import introduces a local name.
func (r ImportRecord) IsBinding() bool {
	return r.Name != "" && !r.IsReExport && !r.IsSideEffect
}

// SourceName returns the name the import refers to in the target module.
func (r ImportRecord) SourceName() string {
	if r.ImportedName != "" {
		return r.ImportedName
	}
	return r.Name
}

// LocalDeclaration is a top-level, non-exported function or variable.
type LocalDeclaration struct {
	Name string `json:"name" toon:"name"`
	Line int    `json:"line" toon:"line"`
}

// IdentifierSet is the set of identifier names read in a file.
type IdentifierSet map[string]struct{}

// NewIdentifierSet creates a set containing names.
func NewIdentifierSet(names ...string) IdentifierSet {
	s := make(IdentifierSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name.
func (s IdentifierSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set. A nil set contains nothing.
func (s IdentifierSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s IdentifierSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Member is one declared parameter or prop of a function or component.
type Member struct {
	Name                  string `json:"name" toon:"name"`
	Line                  int    `json:"line" toon:"line"`
	IsDeclaredInSignature bool   `json:"declared_in_signature" toon:"declared_in_signature"`
	IsReadInBody          bool   `json:"read_in_body" toon:"read_in_body"`
}

// UsageInfo groups the members of one owner (a component or a function).
type UsageInfo struct {
	OwnerName string   `json:"owner" toon:"owner"`
	Line      int      `json:"line" toon:"line"`
	Members   []Member `json:"members" toon:"members"`
}

// ComponentPropInfo describes the props of a UI component.
type ComponentPropInfo = UsageInfo

// FunctionArgumentInfo describes the parameters of a function.
type FunctionArgumentInfo = UsageInfo
