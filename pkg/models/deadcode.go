package models

// DeadCodeKind is the syntactic nature of a dead-code finding.
type DeadCodeKind string

const (
	KindExport   DeadCodeKind = "export"
	KindImport   DeadCodeKind = "import"
	KindFunction DeadCodeKind = "function"
	KindVariable DeadCodeKind = "variable"
	KindProp     DeadCodeKind = "prop"
	KindArgument DeadCodeKind = "argument"
)

func (k DeadCodeKind) String() string { return string(k) }

// DeadCodeCategory is the diagnostic bucket of a finding. It is kept apart
// from DeadCodeKind so one kind can map to several categories.
type DeadCodeCategory string

const (
	CategoryUnusedExport   DeadCodeCategory = "unusedExport"
	CategoryUnusedImport   DeadCodeCategory = "unusedImport"
	CategoryDeadFunction   DeadCodeCategory = "deadFunction"
	CategoryUnusedVariable DeadCodeCategory = "unusedVariable"
	CategoryUnusedProp     DeadCodeCategory = "unusedProp"
	CategoryUnusedArgument DeadCodeCategory = "unusedArgument"
)

func (c DeadCodeCategory) String() string { return string(c) }

// Categories lists every category in report order.
var Categories = []DeadCodeCategory{
	CategoryUnusedExport,
	CategoryUnusedImport,
	CategoryDeadFunction,
	CategoryUnusedVariable,
	CategoryUnusedProp,
	CategoryUnusedArgument,
}

// ParseCategory converts a string to a DeadCodeCategory.
func ParseCategory(s string) (DeadCodeCategory, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// DeadCodeItem is one declaration considered dead.
type DeadCodeItem struct {
	FilePath       string           `json:"file" toon:"file"`
	SymbolName     string           `json:"symbol" toon:"symbol"`
	Line           int              `json:"line" toon:"line"`
	Kind           DeadCodeKind     `json:"kind" toon:"kind"`
	Category       DeadCodeCategory `json:"category" toon:"category"`
	FromSpecifier  string           `json:"from,omitempty" toon:"from,omitempty"`
	OwnerComponent string           `json:"owner_component,omitempty" toon:"owner_component,omitempty"`
	OwnerFunction  string           `json:"owner_function,omitempty" toon:"owner_function,omitempty"`
}

// DeadCodeResults holds the six ordered finding lists. It is never nil from
// an analysis: an empty result is returned when there is nothing to report.
type DeadCodeResults struct {
	UnusedExports   []DeadCodeItem `json:"unused_exports" toon:"unused_exports"`
	UnusedImports   []DeadCodeItem `json:"unused_imports" toon:"unused_imports"`
	DeadFunctions   []DeadCodeItem `json:"dead_functions" toon:"dead_functions"`
	UnusedVariables []DeadCodeItem `json:"unused_variables" toon:"unused_variables"`
	UnusedProps     []DeadCodeItem `json:"unused_props" toon:"unused_props"`
	UnusedArguments []DeadCodeItem `json:"unused_arguments" toon:"unused_arguments"`
	TotalCount      int            `json:"total_count" toon:"total_count"`
	FilesAnalyzed   int            `json:"files_analyzed" toon:"files_analyzed"`
}

// NewDeadCodeResults creates an empty, well-formed result.
func NewDeadCodeResults() *DeadCodeResults {
	return &DeadCodeResults{
		UnusedExports:   []DeadCodeItem{},
		UnusedImports:   []DeadCodeItem{},
		DeadFunctions:   []DeadCodeItem{},
		UnusedVariables: []DeadCodeItem{},
		UnusedProps:     []DeadCodeItem{},
		UnusedArguments: []DeadCodeItem{},
	}
}

// list returns a pointer to the slice holding category c.
func (r *DeadCodeResults) list(c DeadCodeCategory) *[]DeadCodeItem {
	switch c {
	case CategoryUnusedExport:
		return &r.UnusedExports
	case CategoryUnusedImport:
		return &r.UnusedImports
	case CategoryDeadFunction:
		return &r.DeadFunctions
	case CategoryUnusedVariable:
		return &r.UnusedVariables
	case CategoryUnusedProp:
		return &r.UnusedProps
	case CategoryUnusedArgument:
		return &r.UnusedArguments
	default:
		return nil
	}
}

// Add appends item to the list for its category and updates TotalCount.
// Items with an unknown category are dropped.
func (r *DeadCodeResults) Add(item DeadCodeItem) {
	l := r.list(item.Category)
	if l == nil {
		return
	}
	*l = append(*l, item)
	r.Recount()
}

// ByCategory returns the findings of category c.
func (r *DeadCodeResults) ByCategory(c DeadCodeCategory) []DeadCodeItem {
	if l := r.list(c); l != nil {
		return *l
	}
	return nil
}

// Recount recomputes TotalCount from the six lists and returns it.
func (r *DeadCodeResults) Recount() int {
	total := 0
	for _, c := range Categories {
		total += len(*r.list(c))
	}
	r.TotalCount = total
	return total
}

// Items returns every finding in category order.
func (r *DeadCodeResults) Items() []DeadCodeItem {
	items := make([]DeadCodeItem, 0, r.TotalCount)
	for _, c := range Categories {
		items = append(items, *r.list(c)...)
	}
	return items
}

// Only returns a copy of r restricted to categories. With no categories the
// copy holds everything.
func (r *DeadCodeResults) Only(categories ...DeadCodeCategory) *DeadCodeResults {
	out := NewDeadCodeResults()
	out.FilesAnalyzed = r.FilesAnalyzed
	keep := make(map[DeadCodeCategory]bool, len(categories))
	for _, c := range categories {
		keep[c] = true
	}
	for _, c := range Categories {
		if len(categories) > 0 && !keep[c] {
			continue
		}
		*out.list(c) = append(*out.list(c), *r.list(c)...)
	}
	out.Recount()
	return out
}

// DeadCodeSummary provides aggregate statistics.
type DeadCodeSummary struct {
	TotalCount    int                      `json:"total_count" toon:"total_count"`
	FilesAnalyzed int                      `json:"files_analyzed" toon:"files_analyzed"`
	ByCategory    map[DeadCodeCategory]int `json:"by_category" toon:"by_category"`
	ByFile        map[string]int           `json:"by_file" toon:"by_file"`
}

// Summary aggregates the findings.
func (r *DeadCodeResults) Summary() DeadCodeSummary {
	s := DeadCodeSummary{
		TotalCount:    r.Recount(),
		FilesAnalyzed: r.FilesAnalyzed,
		ByCategory:    make(map[DeadCodeCategory]int, len(Categories)),
		ByFile:        make(map[string]int),
	}
	for _, c := range Categories {
		items := *r.list(c)
		s.ByCategory[c] = len(items)
		for _, it := range items {
			s.ByFile[it.FilePath]++
		}
	}
	return s
}
