// Package metadata extracts per-file declaration and usage records from
// parsed TypeScript and JavaScript sources.
package metadata

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/parser"
	"github.com/panbanda/tangle/pkg/source"
)

// FileMetadata holds every record extracted from one file.
type FileMetadata struct {
	Exports           []models.ExportRecord
	Imports           []models.ImportRecord
	LocalFunctions    []models.LocalDeclaration
	LocalVariables    []models.LocalDeclaration
	UsedIdentifiers   models.IdentifierSet
	ComponentProps    []models.ComponentPropInfo
	FunctionArguments []models.FunctionArgumentInfo
}

func newFileMetadata() *FileMetadata {
	return &FileMetadata{
		Exports:           []models.ExportRecord{},
		Imports:           []models.ImportRecord{},
		LocalFunctions:    []models.LocalDeclaration{},
		LocalVariables:    []models.LocalDeclaration{},
		UsedIdentifiers:   models.NewIdentifierSet(),
		ComponentProps:    []models.ComponentPropInfo{},
		FunctionArguments: []models.FunctionArgumentInfo{},
	}
}

// Extract walks the unit's tree once and returns all of its records. A unit
// without a tree yields empty records.
func Extract(u *source.Unit) *FileMetadata {
	if !u.Parsed() {
		return newFileMetadata()
	}
	x := &extractor{
		res:            u.Result,
		src:            u.Result.Source,
		meta:           newFileMetadata(),
		declared:       make(map[uint32]struct{}),
		handledCalls:   make(map[uint32]struct{}),
		exportedLocals: make(map[string]struct{}),
		localTypes:     make(map[string]models.ExportKind),
	}
	parser.Traverse(u.Result.Root(), x)
	x.finish()
	return x.meta
}

// Exports returns the unit's export records.
func Exports(u *source.Unit) []models.ExportRecord { return Extract(u).Exports }

// Imports returns the unit's import records.
func Imports(u *source.Unit) []models.ImportRecord { return Extract(u).Imports }

// LocalFunctions returns the unit's top-level, non-exported functions.
func LocalFunctions(u *source.Unit) []models.LocalDeclaration { return Extract(u).LocalFunctions }

// LocalVariables returns the unit's top-level, non-exported variables.
func LocalVariables(u *source.Unit) []models.LocalDeclaration { return Extract(u).LocalVariables }

// UsedIdentifiers returns every identifier read in the unit.
func UsedIdentifiers(u *source.Unit) models.IdentifierSet { return Extract(u).UsedIdentifiers }

// ComponentProps returns the props of each component in the unit.
func ComponentProps(u *source.Unit) []models.ComponentPropInfo { return Extract(u).ComponentProps }

// FunctionArguments returns the parameters of each named function in the unit.
func FunctionArguments(u *source.Unit) []models.FunctionArgumentInfo {
	return Extract(u).FunctionArguments
}

// binding is one name introduced by a parameter. prop is the property the
// binding destructures, if any.
type binding struct {
	name string
	prop string
	line int
}

// scope is an open function during the walk.
type scope struct {
	node        *sitter.Node
	owner       string
	line        int
	isComponent bool
	params      []binding
	// propsName is the identifier a component receives its props through
	// when they are not destructured.
	propsName string
	propReads []models.Member
	used      models.IdentifierSet
}

type pendingExport struct {
	local    string
	exported string
	line     int
	typeOnly bool
}

// extractor implements parser.Visitor.
type extractor struct {
	res  *parser.ParseResult
	src  []byte
	meta *FileMetadata

	// declared holds start offsets of identifiers in binding position.
	declared     map[uint32]struct{}
	handledCalls map[uint32]struct{}

	scopes  []*scope
	classes []string

	exportedLocals map[string]struct{}
	localTypes     map[string]models.ExportKind
	pending        []pendingExport
}

func (x *extractor) text(n *sitter.Node) string {
	return parser.GetNodeText(n, x.src)
}

func (x *extractor) line(n *sitter.Node) int {
	return x.res.Line(n)
}

func (x *extractor) declare(n *sitter.Node) {
	if n != nil {
		x.declared[n.StartByte()] = struct{}{}
	}
}

func (x *extractor) isDeclared(n *sitter.Node) bool {
	_, ok := x.declared[n.StartByte()]
	return ok
}

// Enter implements parser.Visitor.
func (x *extractor) Enter(n *sitter.Node, nodeType string) bool {
	if !n.IsNamed() {
		return false
	}

	kind := KindOf(nodeType)
	switch kind {
	case KindProgram:
		for i := range int(n.NamedChildCount()) {
			x.topLevel(n.NamedChild(i))
		}
		return true

	case KindImportStatement:
		// Bindings only; nothing inside an import is a read.
		return false

	case KindExportStatement:
		if n.ChildByFieldName("source") != nil {
			return false
		}
		if n.ChildByFieldName("declaration") == nil && n.ChildByFieldName("value") == nil && !hasChild(n, "=") {
			// export { a, b as c }
			return false
		}
		return true

	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethodDefinition:
		x.openScope(n, kind)
		return true

	case KindVariableDeclarator:
		for _, b := range patternBindings(n.ChildByFieldName("name"), nil) {
			x.declare(b)
		}
		return true

	case KindClassDeclaration:
		name := n.ChildByFieldName("name")
		x.declare(name)
		x.classes = append(x.classes, x.text(name))
		return true

	case KindTypeDeclaration:
		x.declare(n.ChildByFieldName("name"))
		return true

	case KindCallExpression:
		x.call(n)
		return true

	case KindMemberExpression:
		x.memberRead(n)
		return true

	case KindIdentifier, KindShorthandProperty:
		if !x.isDeclared(n) {
			x.use(x.text(n))
		}
		return false
	}

	return true
}

// Leave implements parser.Visitor.
func (x *extractor) Leave(n *sitter.Node, nodeType string) {
	kind := KindOf(nodeType)
	switch {
	case kind.IsFunction():
		x.closeScope(n)
	case kind == KindClassDeclaration:
		if len(x.classes) > 0 {
			x.classes = x.classes[:len(x.classes)-1]
		}
	}
}

func (x *extractor) use(name string) {
	if name == "" {
		return
	}
	x.meta.UsedIdentifiers.Add(name)
	for _, s := range x.scopes {
		s.used.Add(name)
	}
}

// topLevel records imports, exports and local declarations of one
// statement directly under the program node.
func (x *extractor) topLevel(stmt *sitter.Node) {
	switch stmt.Type() {
	case "import_statement":
		x.importStatement(stmt)

	case "export_statement":
		x.exportStatement(stmt)

	case "function_declaration", "generator_function_declaration":
		name := stmt.ChildByFieldName("name")
		x.meta.LocalFunctions = append(x.meta.LocalFunctions, models.LocalDeclaration{
			Name: x.text(name),
			Line: x.line(name),
		})

	case "lexical_declaration", "variable_declaration":
		x.localDeclaration(stmt)

	case "interface_declaration":
		x.localTypes[x.text(stmt.ChildByFieldName("name"))] = models.ExportInterface
	case "type_alias_declaration":
		x.localTypes[x.text(stmt.ChildByFieldName("name"))] = models.ExportType

	case "expression_statement":
		x.commonJSExport(stmt)
	}
}

func (x *extractor) localDeclaration(stmt *sitter.Node) {
	for i := range int(stmt.NamedChildCount()) {
		decl := stmt.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")

		if spec, ok := x.requireSpecifier(value); ok {
			x.requireBindings(nameNode, spec)
			x.handledCalls[value.StartByte()] = struct{}{}
			continue
		}

		if nameNode != nil && nameNode.Type() == "identifier" && isFunctionValue(value) {
			x.meta.LocalFunctions = append(x.meta.LocalFunctions, models.LocalDeclaration{
				Name: x.text(nameNode),
				Line: x.line(nameNode),
			})
			continue
		}

		for _, b := range patternBindings(nameNode, nil) {
			x.meta.LocalVariables = append(x.meta.LocalVariables, models.LocalDeclaration{
				Name: x.text(b),
				Line: x.line(b),
			})
		}
	}
}

func (x *extractor) importStatement(stmt *sitter.Node) {
	src := stmt.ChildByFieldName("source")
	typeOnly := hasChild(stmt, "type")

	if req := firstChildOfType(stmt, "import_require_clause"); req != nil {
		// import fs = require('fs')
		name := firstChildOfType(req, "identifier")
		x.declare(name)
		spec := stringValue(req.ChildByFieldName("source"), x.src)
		x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
			Name:          x.text(name),
			ImportedName:  "default",
			FromSpecifier: spec,
			Line:          x.line(name),
			IsRequire:     true,
		})
		return
	}

	spec := stringValue(src, x.src)
	if spec == "" {
		return
	}

	clause := firstChildOfType(stmt, "import_clause")
	if clause == nil {
		x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
			FromSpecifier: spec,
			Line:          x.line(stmt),
			IsSideEffect:  true,
		})
		return
	}

	for i := range int(clause.NamedChildCount()) {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "identifier":
			x.declare(c)
			x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
				Name:          x.text(c),
				ImportedName:  "default",
				FromSpecifier: spec,
				Line:          x.line(c),
				IsTypeOnly:    typeOnly,
			})
		case "namespace_import":
			id := firstChildOfType(c, "identifier")
			x.declare(id)
			x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
				Name:          x.text(id),
				ImportedName:  "*",
				FromSpecifier: spec,
				Line:          x.line(id),
				IsTypeOnly:    typeOnly,
			})
		case "named_imports":
			for j := range int(c.NamedChildCount()) {
				s := c.NamedChild(j)
				if s.Type() != "import_specifier" {
					continue
				}
				name := s.ChildByFieldName("name")
				local := name
				if alias := s.ChildByFieldName("alias"); alias != nil {
					local = alias
				}
				x.declare(name)
				x.declare(local)
				x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
					Name:          x.text(local),
					ImportedName:  x.text(name),
					FromSpecifier: spec,
					Line:          x.line(local),
					IsTypeOnly:    typeOnly || hasChild(s, "type"),
				})
			}
		}
	}
}

func (x *extractor) exportStatement(stmt *sitter.Node) {
	typeOnly := hasChild(stmt, "type")
	isDefault := hasChild(stmt, "default")

	if src := stmt.ChildByFieldName("source"); src != nil {
		x.reExport(stmt, stringValue(src, x.src), typeOnly)
		return
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		x.exportDeclaration(decl, isDefault)
		return
	}

	if clause := firstChildOfType(stmt, "export_clause"); clause != nil {
		for i := range int(clause.NamedChildCount()) {
			s := clause.NamedChild(i)
			if s.Type() != "export_specifier" {
				continue
			}
			name := s.ChildByFieldName("name")
			exported := name
			if alias := s.ChildByFieldName("alias"); alias != nil {
				exported = alias
			}
			local := x.text(name)
			x.exportedLocals[local] = struct{}{}
			x.pending = append(x.pending, pendingExport{
				local:    local,
				exported: x.text(exported),
				line:     x.line(exported),
				typeOnly: typeOnly || hasChild(s, "type"),
			})
		}
		return
	}

	if isDefault || hasChild(stmt, "=") {
		value := stmt.ChildByFieldName("value")
		if value == nil {
			value = lastNamedChild(stmt)
		}
		name := "default"
		if value != nil {
			switch value.Type() {
			case "function", "function_expression", "generator_function", "class":
				if n := value.ChildByFieldName("name"); n != nil {
					name = x.text(n)
				}
			}
		}
		x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
			Name:      name,
			Line:      x.line(stmt),
			Kind:      models.ExportValue,
			IsDefault: true,
		})
	}
}

func (x *extractor) exportDeclaration(decl *sitter.Node, isDefault bool) {
	if decl.Type() == "ambient_declaration" {
		if inner := decl.NamedChild(0); inner != nil {
			decl = inner
		}
	}

	add := func(nameNode *sitter.Node, kind models.ExportKind) {
		if nameNode == nil {
			return
		}
		x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
			Name:      x.text(nameNode),
			Line:      x.line(nameNode),
			Kind:      kind,
			IsDefault: isDefault,
		})
	}

	switch decl.Type() {
	case "interface_declaration":
		add(decl.ChildByFieldName("name"), models.ExportInterface)
	case "type_alias_declaration":
		add(decl.ChildByFieldName("name"), models.ExportType)
	case "lexical_declaration", "variable_declaration":
		for i := range int(decl.NamedChildCount()) {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			for _, b := range patternBindings(d.ChildByFieldName("name"), nil) {
				add(b, models.ExportValue)
			}
		}
	default:
		// functions, classes, enums, namespaces
		add(decl.ChildByFieldName("name"), models.ExportValue)
	}
}

func (x *extractor) reExport(stmt *sitter.Node, spec string, typeOnly bool) {
	if spec == "" {
		return
	}

	if clause := firstChildOfType(stmt, "export_clause"); clause != nil {
		for i := range int(clause.NamedChildCount()) {
			s := clause.NamedChild(i)
			if s.Type() != "export_specifier" {
				continue
			}
			name := s.ChildByFieldName("name")
			exported := name
			if alias := s.ChildByFieldName("alias"); alias != nil {
				exported = alias
			}
			specTypeOnly := typeOnly || hasChild(s, "type")
			kind := models.ExportValue
			if specTypeOnly {
				kind = models.ExportType
			}
			x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
				Name: x.text(exported),
				Line: x.line(exported),
				Kind: kind,
			})
			x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
				Name:          x.text(name),
				ImportedName:  x.text(name),
				FromSpecifier: spec,
				Line:          x.line(name),
				IsTypeOnly:    specTypeOnly,
				IsReExport:    true,
			})
		}
		return
	}

	// export * from '...' and export * as ns from '...'
	rec := models.ImportRecord{
		Name:          "*",
		ImportedName:  "*",
		FromSpecifier: spec,
		Line:          x.line(stmt),
		IsTypeOnly:    typeOnly,
		IsReExport:    true,
	}
	if ns := firstChildOfType(stmt, "namespace_export"); ns != nil {
		if id := lastNamedChild(ns); id != nil {
			rec.Name = x.text(id)
			x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
				Name: x.text(id),
				Line: x.line(id),
				Kind: models.ExportValue,
			})
		}
	}
	x.meta.Imports = append(x.meta.Imports, rec)
}

// commonJSExport records module.exports = ..., exports.x = ... and
// module.exports.x = ... assignments.
func (x *extractor) commonJSExport(stmt *sitter.Node) {
	assign := stmt.NamedChild(0)
	if assign == nil || assign.Type() != "assignment_expression" {
		return
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	target := x.text(left)

	switch {
	case target == "module.exports":
		if right != nil && right.Type() == "object" {
			for i := range int(right.NamedChildCount()) {
				p := right.NamedChild(i)
				var key *sitter.Node
				switch p.Type() {
				case "shorthand_property_identifier":
					key = p
				case "pair", "method_definition":
					key = p.ChildByFieldName("key")
					if key == nil {
						key = p.ChildByFieldName("name")
					}
				}
				if key != nil {
					x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
						Name: x.text(key),
						Line: x.line(key),
						Kind: models.ExportValue,
					})
				}
			}
			return
		}
		x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
			Name:      "default",
			Line:      x.line(stmt),
			Kind:      models.ExportValue,
			IsDefault: true,
		})

	case strings.HasPrefix(target, "exports.") || strings.HasPrefix(target, "module.exports."):
		prop := left.ChildByFieldName("property")
		x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
			Name: x.text(prop),
			Line: x.line(prop),
			Kind: models.ExportValue,
		})
	}
}

// requireSpecifier returns the module of a require('...') call.
func (x *extractor) requireSpecifier(n *sitter.Node) (string, bool) {
	if n == nil || n.Type() != "call_expression" {
		return "", false
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || x.text(fn) != "require" {
		return "", false
	}
	arg := firstStringArgument(n)
	if arg == nil {
		return "", false
	}
	return stringValue(arg, x.src), true
}

func (x *extractor) requireBindings(pattern *sitter.Node, spec string) {
	if pattern == nil {
		return
	}
	if pattern.Type() == "identifier" {
		x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
			Name:          x.text(pattern),
			ImportedName:  "default",
			FromSpecifier: spec,
			Line:          x.line(pattern),
			IsRequire:     true,
		})
		return
	}
	for _, p := range propBindings(pattern, x.src) {
		for _, b := range p.nodes {
			x.meta.Imports = append(x.meta.Imports, models.ImportRecord{
				Name:          x.text(b),
				ImportedName:  p.prop,
				FromSpecifier: spec,
				Line:          x.line(b),
				IsRequire:     true,
			})
		}
	}
}

// call records require() and import() calls that are not top-level
// bindings. They add dependency edges without binding names.
func (x *extractor) call(n *sitter.Node) {
	if _, ok := x.handledCalls[n.StartByte()]; ok {
		return
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}

	var rec models.ImportRecord
	switch {
	case fn.Type() == "import":
		rec.IsDynamic = true
	case fn.Type() == "identifier" && x.text(fn) == "require":
		rec.IsRequire = true
	default:
		return
	}

	arg := firstStringArgument(n)
	if arg == nil {
		return
	}
	rec.FromSpecifier = stringValue(arg, x.src)
	rec.Line = x.line(n)
	rec.IsSideEffect = true
	if rec.FromSpecifier != "" {
		x.meta.Imports = append(x.meta.Imports, rec)
	}
}

// memberRead records props.x reads inside a component that takes its props
// as a single identifier.
func (x *extractor) memberRead(n *sitter.Node) {
	s := x.innermostComponent()
	if s == nil || s.propsName == "" {
		return
	}
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")
	if obj == nil || prop == nil || obj.Type() != "identifier" || x.text(obj) != s.propsName {
		return
	}
	name := x.text(prop)
	for _, m := range s.propReads {
		if m.Name == name {
			return
		}
	}
	s.propReads = append(s.propReads, models.Member{
		Name:         name,
		Line:         x.line(prop),
		IsReadInBody: true,
	})
}

func (x *extractor) innermostComponent() *scope {
	for i := len(x.scopes) - 1; i >= 0; i-- {
		if x.scopes[i].isComponent {
			return x.scopes[i]
		}
	}
	return nil
}

func (x *extractor) openScope(n *sitter.Node, kind NodeKind) {
	s := &scope{node: n, line: x.line(n), used: models.NewIdentifierSet()}

	switch kind {
	case KindFunctionDeclaration:
		name := n.ChildByFieldName("name")
		x.declare(name)
		s.owner = x.text(name)
	case KindFunctionExpression, KindArrowFunction:
		if p := n.Parent(); p != nil && p.Type() == "variable_declarator" {
			if name := p.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				s.owner = x.text(name)
			}
		}
		if name := n.ChildByFieldName("name"); name != nil {
			x.declare(name)
			if s.owner == "" {
				s.owner = x.text(name)
			}
		}
	case KindMethodDefinition:
		s.owner = x.text(n.ChildByFieldName("name"))
		if len(x.classes) > 0 && x.classes[len(x.classes)-1] != "" {
			s.owner = x.classes[len(x.classes)-1] + "." + s.owner
		}
	}

	s.isComponent = kind != KindMethodDefinition && isComponentName(s.owner)

	var params []*sitter.Node
	if p := n.ChildByFieldName("parameters"); p != nil {
		for i := range int(p.NamedChildCount()) {
			params = append(params, p.NamedChild(i))
		}
	} else if p := n.ChildByFieldName("parameter"); p != nil {
		params = append(params, p)
	}

	for i, p := range params {
		if isParameterProperty(p) || p.Type() == "comment" {
			continue
		}
		bindings := patternBindings(p, nil)
		for _, b := range bindings {
			x.declare(b)
		}

		if s.isComponent && i == 0 {
			pattern := unwrapParameter(p)
			if pattern != nil && pattern.Type() == "identifier" {
				s.propsName = x.text(pattern)
				continue
			}
			for _, pb := range propBindings(pattern, x.src) {
				for _, b := range pb.nodes {
					s.params = append(s.params, binding{name: x.text(b), prop: pb.prop, line: x.line(b)})
				}
			}
			continue
		}
		if s.isComponent {
			continue
		}
		for _, b := range bindings {
			s.params = append(s.params, binding{name: x.text(b), line: x.line(b)})
		}
	}

	x.scopes = append(x.scopes, s)
}

func (x *extractor) closeScope(n *sitter.Node) {
	if len(x.scopes) == 0 {
		return
	}
	s := x.scopes[len(x.scopes)-1]
	x.scopes = x.scopes[:len(x.scopes)-1]
	if s.owner == "" {
		return
	}

	if s.isComponent {
		if len(s.params) == 0 && len(s.propReads) == 0 {
			return
		}
		info := models.ComponentPropInfo{OwnerName: s.owner, Line: s.line, Members: []models.Member{}}
		seen := make(map[string]int)
		for _, p := range s.params {
			if i, ok := seen[p.prop]; ok {
				info.Members[i].IsReadInBody = info.Members[i].IsReadInBody || s.used.Has(p.name)
				continue
			}
			seen[p.prop] = len(info.Members)
			info.Members = append(info.Members, models.Member{
				Name:                  p.prop,
				Line:                  p.line,
				IsDeclaredInSignature: true,
				IsReadInBody:          s.used.Has(p.name),
			})
		}
		info.Members = append(info.Members, s.propReads...)
		x.meta.ComponentProps = append(x.meta.ComponentProps, info)
		return
	}

	if len(s.params) == 0 {
		return
	}
	info := models.FunctionArgumentInfo{OwnerName: s.owner, Line: s.line, Members: make([]models.Member, 0, len(s.params))}
	for _, p := range s.params {
		info.Members = append(info.Members, models.Member{
			Name:                  p.name,
			Line:                  p.line,
			IsDeclaredInSignature: true,
			IsReadInBody:          s.used.Has(p.name),
		})
	}
	x.meta.FunctionArguments = append(x.meta.FunctionArguments, info)
}

// finish resolves export clauses against local declarations.
func (x *extractor) finish() {
	for _, p := range x.pending {
		kind := models.ExportValue
		if k, ok := x.localTypes[p.local]; ok {
			kind = k
		} else if p.typeOnly {
			kind = models.ExportType
		}
		x.meta.Exports = append(x.meta.Exports, models.ExportRecord{
			Name:      p.exported,
			Line:      p.line,
			Kind:      kind,
			IsDefault: p.exported == "default",
		})
	}

	if len(x.exportedLocals) > 0 {
		x.meta.LocalFunctions = withoutNames(x.meta.LocalFunctions, x.exportedLocals)
		x.meta.LocalVariables = withoutNames(x.meta.LocalVariables, x.exportedLocals)
	}
}

func withoutNames(decls []models.LocalDeclaration, names map[string]struct{}) []models.LocalDeclaration {
	out := decls[:0]
	for _, d := range decls {
		if _, ok := names[d.Name]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// isComponentName reports whether name follows the component convention of
// starting with an upper-case letter.
func isComponentName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func isFunctionValue(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

// isParameterProperty reports TypeScript constructor parameters such as
// `private readonly repo: Repo`, which declare fields rather than arguments.
func isParameterProperty(p *sitter.Node) bool {
	for i := range int(p.ChildCount()) {
		switch p.Child(i).Type() {
		case "accessibility_modifier", "readonly", "override_modifier":
			return true
		}
	}
	return false
}

// unwrapParameter returns the binding pattern of a parameter node.
func unwrapParameter(p *sitter.Node) *sitter.Node {
	if p == nil {
		return nil
	}
	switch p.Type() {
	case "required_parameter", "optional_parameter":
		return unwrapParameter(p.ChildByFieldName("pattern"))
	case "assignment_pattern":
		return unwrapParameter(p.ChildByFieldName("left"))
	}
	return p
}

// patternBindings appends the identifier nodes a binding pattern introduces.
// Default values and property keys are not bindings.
func patternBindings(n *sitter.Node, out []*sitter.Node) []*sitter.Node {
	if n == nil {
		return out
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(out, n)
	case "required_parameter", "optional_parameter":
		return patternBindings(n.ChildByFieldName("pattern"), out)
	case "assignment_pattern", "object_assignment_pattern":
		return patternBindings(n.ChildByFieldName("left"), out)
	case "pair_pattern":
		return patternBindings(n.ChildByFieldName("value"), out)
	case "object_pattern", "array_pattern", "rest_pattern":
		for i := range int(n.NamedChildCount()) {
			out = patternBindings(n.NamedChild(i), out)
		}
	}
	return out
}

type propBinding struct {
	prop  string
	nodes []*sitter.Node
}

// propBindings splits an object pattern into its destructured properties.
func propBindings(pattern *sitter.Node, src []byte) []propBinding {
	if pattern == nil || pattern.Type() != "object_pattern" {
		return nil
	}
	var out []propBinding
	for i := range int(pattern.NamedChildCount()) {
		c := pattern.NamedChild(i)
		switch c.Type() {
		case "shorthand_property_identifier_pattern":
			out = append(out, propBinding{prop: parser.GetNodeText(c, src), nodes: []*sitter.Node{c}})
		case "object_assignment_pattern":
			left := c.ChildByFieldName("left")
			out = append(out, propBinding{prop: parser.GetNodeText(left, src), nodes: patternBindings(left, nil)})
		case "pair_pattern":
			key := c.ChildByFieldName("key")
			out = append(out, propBinding{
				prop:  strings.Trim(parser.GetNodeText(key, src), `"'`),
				nodes: patternBindings(c.ChildByFieldName("value"), nil),
			})
		case "rest_pattern":
			nodes := patternBindings(c, nil)
			if len(nodes) > 0 {
				out = append(out, propBinding{prop: parser.GetNodeText(nodes[0], src), nodes: nodes})
			}
		}
	}
	return out
}

func hasChild(n *sitter.Node, nodeType string) bool {
	for i := range int(n.ChildCount()) {
		if n.Child(i).Type() == nodeType {
			return true
		}
	}
	return false
}

func firstChildOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := range int(n.ChildCount()) {
		if c := n.Child(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}

func firstStringArgument(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return nil
	}
	return arg
}

// stringValue returns the contents of a string literal node.
func stringValue(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	if frag := firstChildOfType(n, "string_fragment"); frag != nil {
		return parser.GetNodeText(frag, src)
	}
	return strings.Trim(parser.GetNodeText(n, src), "\"'`")
}
