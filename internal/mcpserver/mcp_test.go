package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/testutil"
	"github.com/panbanda/tangle/pkg/config"
	"github.com/panbanda/tangle/pkg/models"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false
	return cfg
}

func writeProject(t *testing.T) string {
	t.Helper()
	return testutil.CreateFileTree(t, t.TempDir(),
		testutil.F("src/main.ts", "import { helper } from './util';\nimport React from 'react';\nhelper();\n"),
		testutil.F("src/util.ts", "export function helper() {}\nexport function unused() {}\n"),
	)
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return tc.Text
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", testConfig())
	if server == nil || server.server == nil {
		t.Fatal("NewServer() returned an unusable server")
	}
	if NewServer("", testConfig()) == nil {
		t.Fatal(`NewServer("") returned nil`)
	}
}

func TestToolDescriptions(t *testing.T) {
	for name, fn := range map[string]func() string{
		"deadcode":     describeDeadcode,
		"dependencies": describeDependencies,
	} {
		desc := fn()
		for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
			if !strings.Contains(desc, section) {
				t.Errorf("%s description missing %s", name, section)
			}
		}
	}
}

func TestAnalyzeInputDefaults(t *testing.T) {
	assert.Equal(t, []string{"."}, AnalyzeInput{}.paths())
	assert.Equal(t, []string{"/a", "/b"}, AnalyzeInput{Paths: []string{"/a", "/b"}}.paths())

	tests := []struct {
		format string
		want   output.Format
	}{
		{"", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"toon", output.FormatTOON},
		{"text", output.FormatTOON},
		{"xml", output.FormatTOON},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnalyzeInput{Format: tt.format}.format(), tt.format)
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError(errors.New("boom"))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: boom", textOf(t, result))
}

func callDeadcode(t *testing.T, s *Server, in DeadcodeInput) *mcp.CallToolResult {
	t.Helper()
	result, _, err := analyzeTool(s, "analyze_deadcode", deadcode)(context.Background(), nil, in)
	require.NoError(t, err)
	return result
}

func callDependencies(t *testing.T, s *Server, in DependenciesInput) *mcp.CallToolResult {
	t.Helper()
	result, _, err := analyzeTool(s, "analyze_dependencies", dependencies)(context.Background(), nil, in)
	require.NoError(t, err)
	return result
}

func TestHandleDeadcode(t *testing.T) {
	dir := writeProject(t)
	s := NewServer("test", testConfig())

	result := callDeadcode(t, s, DeadcodeInput{
		AnalyzeInput: AnalyzeInput{Paths: []string{dir}, Format: "json"},
	})
	require.False(t, result.IsError, textOf(t, result))

	var decoded models.DeadCodeResults
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &decoded))
	var exports []string
	for _, it := range decoded.UnusedExports {
		exports = append(exports, it.SymbolName)
	}
	assert.Equal(t, []string{"unused"}, exports)
	assert.Equal(t, 2, decoded.FilesAnalyzed)
}

func TestHandleDeadcode_Categories(t *testing.T) {
	dir := writeProject(t)
	s := NewServer("test", testConfig())

	result := callDeadcode(t, s, DeadcodeInput{
		AnalyzeInput: AnalyzeInput{Paths: []string{dir}},
		Categories:   []string{"unusedImport"},
	})
	text := textOf(t, result)
	assert.Contains(t, text, "React")
	assert.NotContains(t, text, "helper")

	result = callDeadcode(t, s, DeadcodeInput{
		AnalyzeInput: AnalyzeInput{Paths: []string{dir}},
		Categories:   []string{"bogus"},
	})
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), `unknown category "bogus"`)
}

func TestHandleDeadcode_NoFiles(t *testing.T) {
	s := NewServer("test", testConfig())
	result := callDeadcode(t, s, DeadcodeInput{
		AnalyzeInput: AnalyzeInput{Paths: []string{t.TempDir()}},
	})
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "no source files found")
}

func TestHandleDependencies(t *testing.T) {
	dir := writeProject(t)
	s := NewServer("test", testConfig())

	result := callDependencies(t, s, DependenciesInput{
		AnalyzeInput: AnalyzeInput{Paths: []string{dir}, Format: "json"},
		Root:         "src/main.ts",
	})
	require.False(t, result.IsError, textOf(t, result))

	var decoded models.DependencyResults
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &decoded))
	require.Len(t, decoded.Dependencies, 1)
	assert.True(t, strings.HasSuffix(decoded.Dependencies[0].FilePath, "util.ts"))
	require.Len(t, decoded.ExternalPackages, 1)
	assert.Equal(t, "react", decoded.ExternalPackages[0].FilePath)

	result = callDependencies(t, s, DependenciesInput{
		AnalyzeInput: AnalyzeInput{Paths: []string{dir}},
	})
	assert.True(t, result.IsError, "root is required")
}

func TestParsePrompt(t *testing.T) {
	p, err := parsePrompt([]byte("---\ndescription: Find things\narguments:\n  - name: file\n    required: true\n---\nLook at {{file}}.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Find things", p.Description)
	require.Len(t, p.Arguments, 1)
	assert.Equal(t, "file", p.Arguments[0].Name)
	assert.True(t, p.Arguments[0].Required)
	assert.Equal(t, "Look at {{file}}.\n", p.Body)

	text, err := p.render(map[string]string{"file": "src/a.ts"})
	require.NoError(t, err)
	assert.Equal(t, "Look at src/a.ts.\n", text)

	_, err = p.render(nil)
	assert.ErrorContains(t, err, "file")

	p, err = parsePrompt([]byte("no frontmatter"))
	require.NoError(t, err)
	assert.Empty(t, p.Description)
	assert.Equal(t, "no frontmatter", p.Body)
}

func TestLoadPrompts(t *testing.T) {
	prompts, err := loadPrompts(promptFiles)
	require.NoError(t, err)

	var names []string
	for _, p := range prompts {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Description, p.Name)
		assert.NotEmpty(t, p.Body, p.Name)
	}
	assert.Equal(t, []string{"cleanup-dead-code", "impact", "refactor-order"}, names)
}

func TestServerOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	s := NewServer("test", testConfig())

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_deadcode", "analyze_dependencies"}, names)
	for _, tool := range tools.Tools {
		require.NotNil(t, tool.Annotations)
		assert.True(t, tool.Annotations.ReadOnlyHint, tool.Name)
	}

	prompt, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "refactor-order",
		Arguments: map[string]string{"file": "src/main.ts"},
	})
	require.NoError(t, err)
	require.Len(t, prompt.Messages, 1)
	text := prompt.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "topological_order")
	assert.Contains(t, text, "`src/main.ts`")

	_, err = session.GetPrompt(ctx, &mcp.GetPromptParams{Name: "impact"})
	assert.Error(t, err, "file is required")
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "0.0.0", m.Version)
	assert.Equal(t, "io.github.panbanda/tangle", m.Name)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "ghcr.io/panbanda/tangle:0.0.0", m.Packages[0].Identifier)
}

func TestNewManifest_Version(t *testing.T) {
	tests := map[string]string{
		"v1.4.0": "1.4.0",
		"1.4.0":  "1.4.0",
		"dev":    "0.0.0",
	}
	for in, want := range tests {
		m := NewManifest(in)
		assert.Equal(t, want, m.Version, in)
		assert.Equal(t, "ghcr.io/panbanda/tangle:"+want, m.Packages[0].Identifier, in)
	}
}
