// Package deadcode classifies extracted declarations into unused exports,
// unused imports, dead functions, unused variables, unused props and unused
// arguments.
package deadcode

import (
	"path"
	"strings"

	"github.com/panbanda/tangle/pkg/analyzer/metadata"
	"github.com/panbanda/tangle/pkg/models"
)

var defaultClassifier, _ = New()

// Classify runs the default classifier over entries.
func Classify(entries []*metadata.Entry) *models.DeadCodeResults {
	return defaultClassifier.Classify(entries)
}

// importRef is an import of a name from another file.
type importRef struct {
	file      string
	specifier string
}

// referenceIndex groups every named import in the set by the name it
// refers to in its target module.
type referenceIndex map[string][]importRef

func buildReferenceIndex(entries []*metadata.Entry) referenceIndex {
	idx := make(referenceIndex)
	for _, e := range entries {
		for _, imp := range e.Imports {
			name := imp.SourceName()
			if name == "" || imp.FromSpecifier == "" {
				continue
			}
			// A bare export * only forwards names; whoever imports them
			// from the barrel is what keeps them alive.
			if imp.IsReExport && imp.Name == "*" {
				continue
			}
			idx[name] = append(idx[name], importRef{file: e.Path(), specifier: imp.FromSpecifier})
		}
	}
	return idx
}

// referenced reports whether a file other than file imports exp from a
// specifier that looks like it points at file.
func (idx referenceIndex) referenced(file string, exp models.ExportRecord) bool {
	check := func(name string) bool {
		for _, ref := range idx[name] {
			if ref.file != file && specifierLikelyReferencesFile(ref.specifier, file) {
				return true
			}
		}
		return false
	}
	if check(exp.Name) || check("*") {
		return true
	}
	return exp.IsDefault && exp.Name != "default" && check("default")
}

// specifierLikelyReferencesFile reports whether specifier textually contains
// the extension-less base name of file. Index files also match on their
// directory name.
func specifierLikelyReferencesFile(specifier, file string) bool {
	stem := fileStem(file)
	if stem == "" {
		return false
	}
	if stem == "index" {
		dir := path.Base(path.Dir(toSlash(file)))
		if dir != "." && dir != "/" && strings.Contains(specifier, dir) {
			return true
		}
	}
	return strings.Contains(specifier, stem)
}

func fileStem(file string) string {
	base := path.Base(toSlash(file))
	if strings.HasSuffix(base, ".d.ts") {
		return strings.TrimSuffix(base, ".d.ts")
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Classify returns the dead-code findings of entries, ordered by file then
// by declaration.
func (c *Classifier) Classify(entries []*metadata.Entry) *models.DeadCodeResults {
	results := models.NewDeadCodeResults()
	results.FilesAnalyzed = len(entries)

	refs := buildReferenceIndex(entries)
	for _, e := range entries {
		if matchAny(c.ignoreFiles, e.Path()) {
			continue
		}
		c.classifyEntry(e, refs, results)
	}
	results.Recount()
	return results
}

func (c *Classifier) classifyEntry(e *metadata.Entry, refs referenceIndex, results *models.DeadCodeResults) {
	file := e.Path()
	add := func(item models.DeadCodeItem) {
		if !c.wants(item.Category) || matchAny(c.ignoreNames, item.SymbolName) {
			return
		}
		item.FilePath = file
		results.Add(item)
	}

	for _, exp := range e.Exports {
		if e.UsedIdentifiers.Has(exp.Name) || refs.referenced(file, exp) {
			continue
		}
		add(models.DeadCodeItem{
			SymbolName: exp.Name,
			Line:       exp.Line,
			Kind:       models.KindExport,
			Category:   models.CategoryUnusedExport,
		})
	}

	for _, imp := range e.Imports {
		if !imp.IsBinding() || e.UsedIdentifiers.Has(imp.Name) {
			continue
		}
		add(models.DeadCodeItem{
			SymbolName:    imp.Name,
			Line:          imp.Line,
			Kind:          models.KindImport,
			Category:      models.CategoryUnusedImport,
			FromSpecifier: imp.FromSpecifier,
		})
	}

	for _, fn := range e.LocalFunctions {
		if e.UsedIdentifiers.Has(fn.Name) {
			continue
		}
		add(models.DeadCodeItem{
			SymbolName: fn.Name,
			Line:       fn.Line,
			Kind:       models.KindFunction,
			Category:   models.CategoryDeadFunction,
		})
	}

	for _, v := range e.LocalVariables {
		if e.UsedIdentifiers.Has(v.Name) {
			continue
		}
		add(models.DeadCodeItem{
			SymbolName: v.Name,
			Line:       v.Line,
			Kind:       models.KindVariable,
			Category:   models.CategoryUnusedVariable,
		})
	}

	for _, info := range e.ComponentProps {
		for _, m := range info.Members {
			if !m.IsDeclaredInSignature || m.IsReadInBody {
				continue
			}
			add(models.DeadCodeItem{
				SymbolName:     m.Name,
				Line:           m.Line,
				Kind:           models.KindProp,
				Category:       models.CategoryUnusedProp,
				OwnerComponent: info.OwnerName,
			})
		}
	}

	for _, info := range e.FunctionArguments {
		for _, m := range info.Members {
			if !m.IsDeclaredInSignature || m.IsReadInBody {
				continue
			}
			if c.skipUnderscoreArgs && strings.HasPrefix(m.Name, "_") {
				continue
			}
			add(models.DeadCodeItem{
				SymbolName:    m.Name,
				Line:          m.Line,
				Kind:          models.KindArgument,
				Category:      models.CategoryUnusedArgument,
				OwnerFunction: info.OwnerName,
			})
		}
	}
}
