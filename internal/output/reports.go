package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/panbanda/tangle/pkg/models"
)

var categoryTitles = map[models.DeadCodeCategory]string{
	models.CategoryUnusedExport:   "Unused Exports",
	models.CategoryUnusedImport:   "Unused Imports",
	models.CategoryDeadFunction:   "Dead Functions",
	models.CategoryUnusedVariable: "Unused Variables",
	models.CategoryUnusedProp:     "Unused Props",
	models.CategoryUnusedArgument: "Unused Arguments",
}

// relPath shortens path for display. Paths outside base are kept as is.
func relPath(base, path string) string {
	if base == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// DeadCodeView renders dead-code results. JSON and TOON carry the results
// unchanged; text and markdown show one table per non-empty category.
type DeadCodeView struct {
	Results *models.DeadCodeResults
	BaseDir string
	// colorize is applied to category cells in text mode.
	colorize bool
}

// NewDeadCodeView wraps results for output, shortening paths below baseDir.
func NewDeadCodeView(results *models.DeadCodeResults, baseDir string) *DeadCodeView {
	if results == nil {
		results = models.NewDeadCodeResults()
	}
	return &DeadCodeView{Results: results, BaseDir: baseDir}
}

func (v *DeadCodeView) RenderData() any {
	return v.Results
}

func (v *DeadCodeView) report() *Report {
	r := &Report{Title: "Dead Code"}
	for _, c := range models.Categories {
		items := v.Results.ByCategory(c)
		if len(items) == 0 {
			continue
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			owner := it.OwnerComponent
			if owner == "" {
				owner = it.OwnerFunction
			}
			detail := it.FromSpecifier
			if owner != "" {
				detail = owner
			}
			symbol := it.SymbolName
			if v.colorize {
				symbol = CategoryColor(string(c), symbol)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d", relPath(v.BaseDir, it.FilePath), it.Line),
				symbol,
				string(it.Kind),
				detail,
			})
		}
		r.Sections = append(r.Sections, NewTable(categoryTitles[c],
			[]string{"Location", "Symbol", "Kind", "Detail"}, rows, nil, nil))
	}

	summary := v.Results.Summary()
	parts := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		if n := summary.ByCategory[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", categoryTitles[c], n))
		}
	}
	r.Sections = append(r.Sections, &Section{
		Title: "Summary",
		Content: fmt.Sprintf("%d findings across %d files\n%s",
			summary.TotalCount, summary.FilesAnalyzed, strings.Join(parts, "\n")),
	})
	return r
}

func (v *DeadCodeView) RenderText(w io.Writer, colored bool) error {
	v.colorize = colored
	defer func() { v.colorize = false }()
	return v.report().RenderText(w, colored)
}

func (v *DeadCodeView) RenderMarkdown(w io.Writer) error {
	return v.report().RenderMarkdown(w)
}

// DependencyView renders dependency results.
type DependencyView struct {
	Results *models.DependencyResults
	BaseDir string
}

// NewDependencyView wraps results for output, shortening paths below
// baseDir.
func NewDependencyView(results *models.DependencyResults, baseDir string) *DependencyView {
	return &DependencyView{Results: results, BaseDir: baseDir}
}

func (v *DependencyView) RenderData() any {
	return v.Results
}

func (v *DependencyView) report() *Report {
	res := v.Results
	rel := func(p string) string { return relPath(v.BaseDir, p) }
	r := &Report{Title: "Dependencies of " + rel(res.Root)}

	if len(res.Dependencies) > 0 {
		rows := make([][]string, 0, len(res.Dependencies))
		for _, d := range res.Dependencies {
			rows = append(rows, []string{rel(d.FilePath), fmt.Sprintf("%d", d.Depth), rel(d.DirectImporter)})
		}
		r.Sections = append(r.Sections, NewTable("Local Dependencies",
			[]string{"File", "Depth", "Imported By"}, rows, nil, nil))
	}

	if len(res.ExternalPackages) > 0 {
		rows := make([][]string, 0, len(res.ExternalPackages))
		for _, d := range res.ExternalPackages {
			rows = append(rows, []string{d.FilePath, fmt.Sprintf("%d", d.Depth), rel(d.DirectImporter)})
		}
		r.Sections = append(r.Sections, NewTable("External Packages",
			[]string{"Package", "Depth", "First Importer"}, rows, nil, nil))
	}

	if len(res.TypeEntities) > 0 {
		rows := make([][]string, 0, len(res.TypeEntities))
		for _, te := range res.TypeEntities {
			used := "no"
			if te.IsDirectlyUsed {
				used = "yes"
			}
			rows = append(rows, []string{te.Name, string(te.Kind), fmt.Sprintf("%s:%d", rel(te.FilePath), te.Line), used})
		}
		r.Sections = append(r.Sections, NewTable("Type Entities",
			[]string{"Name", "Kind", "Location", "Used"}, rows, nil, nil))
	}

	order := make([]string, len(res.TopologicalOrder))
	for i, p := range res.TopologicalOrder {
		order[i] = fmt.Sprintf("%d. %s", i+1, rel(p))
	}
	r.Sections = append(r.Sections, &Section{Title: "Build Order (leaves first)", Content: strings.Join(order, "\n")})

	if len(res.Cycles) > 0 {
		lines := make([]string, len(res.Cycles))
		for i, cycle := range res.Cycles {
			names := make([]string, len(cycle))
			for j, p := range cycle {
				names[j] = rel(p)
			}
			lines[i] = strings.Join(names, " -> ")
		}
		r.Sections = append(r.Sections, &Section{Title: "Import Cycles", Content: strings.Join(lines, "\n")})
	}

	if n := len(res.DirectDependents) + len(res.TransitiveDependents); n > 0 {
		rows := make([][]string, 0, n)
		for _, d := range res.DirectDependents {
			rows = append(rows, []string{rel(d.FilePath), "direct", fmt.Sprintf("%d", d.Depth), rel(d.Via)})
		}
		for _, d := range res.TransitiveDependents {
			rows = append(rows, []string{rel(d.FilePath), "transitive", fmt.Sprintf("%d", d.Depth), rel(d.Via)})
		}
		r.Sections = append(r.Sections, NewTable("Dependents",
			[]string{"File", "Relation", "Depth", "Via"}, rows, nil, nil))
	}
	return r
}

func (v *DependencyView) RenderText(w io.Writer, colored bool) error {
	return v.report().RenderText(w, colored)
}

func (v *DependencyView) RenderMarkdown(w io.Writer) error {
	return v.report().RenderMarkdown(w)
}
