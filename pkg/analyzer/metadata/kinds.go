package metadata

// NodeKind enumerates the syntax node kinds the extractor reacts to. Every
// other node type maps to KindOther and is only descended into.
type NodeKind uint8

const (
	KindOther NodeKind = iota
	KindProgram
	KindImportStatement
	KindExportStatement
	KindFunctionDeclaration
	KindFunctionExpression
	KindArrowFunction
	KindMethodDefinition
	KindVariableDeclarator
	KindClassDeclaration
	KindTypeDeclaration
	KindCallExpression
	KindMemberExpression
	KindIdentifier
	KindShorthandProperty
)

var nodeKinds = map[string]NodeKind{
	"program":                        KindProgram,
	"import_statement":               KindImportStatement,
	"export_statement":               KindExportStatement,
	"function_declaration":           KindFunctionDeclaration,
	"generator_function_declaration": KindFunctionDeclaration,
	"function":                       KindFunctionExpression,
	"function_expression":            KindFunctionExpression,
	"generator_function":             KindFunctionExpression,
	"arrow_function":                 KindArrowFunction,
	"method_definition":              KindMethodDefinition,
	"variable_declarator":            KindVariableDeclarator,
	"class_declaration":              KindClassDeclaration,
	"abstract_class_declaration":     KindClassDeclaration,
	"class":                          KindClassDeclaration,
	"interface_declaration":          KindTypeDeclaration,
	"type_alias_declaration":         KindTypeDeclaration,
	"enum_declaration":               KindTypeDeclaration,
	"call_expression":                KindCallExpression,
	"member_expression":              KindMemberExpression,
	"identifier":                     KindIdentifier,
	"type_identifier":                KindIdentifier,
	"shorthand_property_identifier":  KindShorthandProperty,
}

// KindOf maps a tree-sitter node type to its NodeKind.
func KindOf(nodeType string) NodeKind {
	return nodeKinds[nodeType]
}

// IsFunction reports whether k opens a function scope.
func (k NodeKind) IsFunction() bool {
	switch k {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethodDefinition:
		return true
	}
	return false
}
