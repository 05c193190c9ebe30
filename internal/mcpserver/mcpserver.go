// Package mcpserver exposes tangle's analyses as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/tangle/pkg/config"
)

// Server serves the analysis tools and prompts.
type Server struct {
	server *mcp.Server
	config *config.Config
}

// NewServer registers the tools and prompts. A nil cfg loads the
// configuration from the working directory.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "tangle", Title: "tangle", Version: version}, &mcp.ServerOptions{
			Instructions: "Static analysis for TypeScript and JavaScript projects: dead code and import dependencies.",
		}),
		config: cfg,
	}
	s.registerTools()
	if err := s.registerPrompts(); err != nil {
		slog.Warn("prompts not registered", "error", err)
	}
	return s
}

// Run serves over stdin and stdout until ctx is done or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// readOnly marks tools that only read the project.
var readOnly = &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_deadcode",
		Title:       "Dead code",
		Description: describeDeadcode(),
		Annotations: readOnly,
	}, analyzeTool(s, "analyze_deadcode", deadcode))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_dependencies",
		Title:       "Dependencies",
		Description: describeDependencies(),
		Annotations: readOnly,
	}, analyzeTool(s, "analyze_dependencies", dependencies))
}
