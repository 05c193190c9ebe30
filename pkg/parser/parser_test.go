package parser

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.ts", LangTypeScript},
		{"types.d.ts", LangTypeScript},
		{"esm.mts", LangTypeScript},
		{"component.tsx", LangTSX},
		{"script.js", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"common.cjs", LangJavaScript},
		{"component.jsx", LangTSX}, // JSX uses TSX parser
		{"src/App.TSX", LangTSX},
		{"main.go", LangUnknown},
		{"styles.css", LangUnknown},
		{"README", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectLanguage(tt.path); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p := New()
	defer p.Close()

	tests := []struct {
		name string
		lang Language
		src  string
	}{
		{"typescript", LangTypeScript, "export const x: number = 1;\n"},
		{"tsx", LangTSX, "export const A = () => <div>hi</div>;\n"},
		{"javascript", LangJavaScript, "const fs = require('fs');\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.src), tt.lang, "file")
			require.NoError(t, err)
			require.NotNil(t, result.Tree)
			assert.Equal(t, "program", result.Root().Type())
			assert.Equal(t, tt.lang, result.Language)
		})
	}
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("x"), LangUnknown, "x.go")
	if err == nil {
		t.Error("Parse() with unknown language should fail")
	}
}

func TestParse_ReusedAcrossLanguages(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("let a: number = 1;")
	ts, err := p.Parse(src, LangTypeScript, "a.ts")
	require.NoError(t, err)
	js, err := p.Parse(src, LangJavaScript, "a.js")
	require.NoError(t, err)

	assert.False(t, ts.Root().HasError())
	assert.True(t, js.Root().HasError(), "type annotations are not JavaScript")
}

func TestParseResult_Line(t *testing.T) {
	p := New()
	defer p.Close()

	src := "import { a } from './a';\n\nexport function foo() {\n  return a;\n}\n"
	result, err := p.Parse([]byte(src), LangTypeScript, "foo.ts")
	require.NoError(t, err)

	fns := nodesOfType(result.Root(), "function_declaration")
	require.Len(t, fns, 1)
	assert.Equal(t, 3, result.Line(fns[0]))
	assert.Equal(t, 0, result.Line(nil))
}

func TestGetNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("let answer = 42;"), LangJavaScript, "a.js")
	require.NoError(t, err)

	ids := nodesOfType(result.Root(), "identifier")
	require.NotEmpty(t, ids)
	assert.Equal(t, "answer", GetNodeText(ids[0], result.Source))
	assert.Equal(t, "", GetNodeText(nil, result.Source))
	assert.Equal(t, "", GetNodeText(ids[0], []byte("x")))
}

type typeCollector struct {
	want  string
	found []*sitter.Node
}

func (c *typeCollector) Enter(n *sitter.Node, nodeType string) bool {
	if nodeType == c.want {
		c.found = append(c.found, n)
	}
	return true
}

func (c *typeCollector) Leave(*sitter.Node, string) {}

func nodesOfType(root *sitter.Node, nodeType string) []*sitter.Node {
	c := &typeCollector{want: nodeType}
	Traverse(root, c)
	return c.found
}

type recordingVisitor struct {
	events []string
	skip   string
}

func (v *recordingVisitor) Enter(n *sitter.Node, nodeType string) bool {
	v.events = append(v.events, "enter:"+nodeType)
	return nodeType != v.skip
}

func (v *recordingVisitor) Leave(n *sitter.Node, nodeType string) {
	v.events = append(v.events, "leave:"+nodeType)
}

func TestTraverse(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("f(x);"), LangJavaScript, "a.js")
	require.NoError(t, err)

	v := &recordingVisitor{skip: "arguments"}
	Traverse(result.Root(), v)

	require.NotEmpty(t, v.events)
	assert.Equal(t, "enter:program", v.events[0])
	assert.Equal(t, "leave:program", v.events[len(v.events)-1])
	assert.Contains(t, v.events, "enter:arguments")
	assert.NotContains(t, v.events, "leave:arguments")

	// x sits under the skipped arguments node, so only f is entered.
	ids := 0
	for _, e := range v.events {
		if e == "enter:identifier" {
			ids++
		}
	}
	assert.Equal(t, 1, ids)

	before := len(v.events)
	Traverse(nil, v)
	assert.Len(t, v.events, before)
}
