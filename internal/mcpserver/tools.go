package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/service/analysis"
	outputSvc "github.com/panbanda/tangle/internal/service/output"
	"github.com/panbanda/tangle/pkg/models"
)

// AnalyzeInput holds the arguments every analysis tool accepts.
type AnalyzeInput struct {
	Paths   []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to the current directory."`
	Format  string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	Ref     string   `json:"ref,omitempty" jsonschema:"Git revision to analyze instead of the working tree, e.g. HEAD~1 or main."`
	NoCache bool     `json:"no_cache,omitempty" jsonschema:"Recompute instead of reading the results cache."`
}

func (in AnalyzeInput) common() AnalyzeInput { return in }

// DeadcodeInput adds dead-code options.
type DeadcodeInput struct {
	AnalyzeInput
	Categories []string `json:"categories,omitempty" jsonschema:"Restrict to these categories: unusedExport, unusedImport, deadFunction, unusedVariable, unusedProp, unusedArgument."`
}

// DependenciesInput adds dependency options.
type DependenciesInput struct {
	AnalyzeInput
	Root string `json:"root" jsonschema:"File to walk the import graph from, absolute or relative to the first path."`
}

type toolInput interface {
	common() AnalyzeInput
}

func (in AnalyzeInput) paths() []string {
	if len(in.Paths) == 0 {
		return []string{"."}
	}
	return in.Paths
}

// format picks the response encoding. Plain text is never returned to a
// model, so anything unrecognised falls back to TOON.
func (in AnalyzeInput) format() output.Format {
	if f := output.ParseFormat(in.Format); f != output.FormatText {
		return f
	}
	return output.FormatTOON
}

// analyzeTool opens a project for the request's paths, hands it to run and
// encodes whatever run returns. Failures become tool errors rather than
// protocol errors so the model can read them.
func analyzeTool[In toolInput](s *Server, name string, run func(context.Context, *analysis.Project, In) (any, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		log := slog.With("tool", name)
		start := time.Now()
		args := in.common()

		project, err := analysis.OpenProject(ctx, s.config, args.paths(), analysis.ProjectOptions{Ref: args.Ref})
		if err != nil {
			log.Debug("open failed", "error", err)
			return toolError(err)
		}
		defer project.Close()

		result, err := run(ctx, project, in)
		if err != nil {
			log.Debug("analysis failed", "error", err)
			return toolError(err)
		}
		log.Debug("tool done", "files", project.Files.Len(), "duration", time.Since(start))
		return toolResult(result, args.format())
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := outputSvc.New(outputSvc.WithFormat(format)).Render(data)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil, nil
}

func toolError(err error) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}, nil, nil
}

func deadcode(ctx context.Context, p *analysis.Project, in DeadcodeInput) (any, error) {
	categories := make([]models.DeadCodeCategory, 0, len(in.Categories))
	for _, name := range in.Categories {
		c, ok := models.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		categories = append(categories, c)
	}
	return p.DeadCode(ctx, analysis.DeadCodeOptions{Categories: categories, NoCache: in.NoCache})
}

func dependencies(ctx context.Context, p *analysis.Project, in DependenciesInput) (any, error) {
	if in.Root == "" {
		return nil, fmt.Errorf("root is required")
	}
	return p.Dependencies(ctx, in.Root, analysis.DependencyOptions{NoCache: in.NoCache})
}
