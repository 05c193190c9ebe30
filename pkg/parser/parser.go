// Package parser parses TypeScript, TSX and JavaScript with tree-sitter.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is the grammar a file is parsed with.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

var grammars = map[Language]func() *sitter.Language{
	LangTypeScript: typescript.GetLanguage,
	LangTSX:        tsx.GetLanguage,
	LangJavaScript: javascript.GetLanguage,
}

// .jsx goes through the TSX grammar, which is a superset of JSX.
var extensions = map[string]Language{
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
	".jsx": LangTSX,
	".js":  LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
}

// DetectLanguage maps a path's extension to its grammar.
func DetectLanguage(path string) Language {
	if lang, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangUnknown
}

// Parser wraps a tree-sitter parser. Not safe for concurrent use; create
// one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Close releases the underlying C parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseResult is a syntax tree with the source it was built from. Path is
// informational only.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string

	lines *LineIndex
}

// Parse builds a tree for source in lang.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	grammar, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("%s: unsupported language %q", path, lang)
	}
	p.parser.SetLanguage(grammar())

	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%s: no tree produced", path)
	}
	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
		lines:    NewLineIndex(source),
	}, nil
}

// Root returns the program node, or nil.
func (r *ParseResult) Root() *sitter.Node {
	if r == nil || r.Tree == nil {
		return nil
	}
	return r.Tree.RootNode()
}

// Line returns the 1-based line on which node starts, 0 for nil.
func (r *ParseResult) Line(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if r.lines == nil {
		r.lines = NewLineIndex(r.Source)
	}
	line, _ := r.lines.Position(int(node.StartByte()))
	return line
}

// Visitor receives enter and leave callbacks during Traverse. The node type
// is passed in so implementations do not repeat the CGO call.
type Visitor interface {
	// Enter runs before a node's children. Returning false skips them and
	// the matching Leave.
	Enter(node *sitter.Node, nodeType string) bool
	Leave(node *sitter.Node, nodeType string)
}

// Traverse walks the tree depth-first.
func Traverse(node *sitter.Node, v Visitor) {
	if node == nil {
		return
	}
	nodeType := node.Type()
	if !v.Enter(node, nodeType) {
		return
	}
	for i := range int(node.ChildCount()) {
		Traverse(node.Child(i), v)
	}
	v.Leave(node, nodeType)
}

// GetNodeText returns the source text of node, or "" when node is nil or
// its range does not fit source.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
