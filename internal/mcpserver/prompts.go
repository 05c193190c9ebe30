package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptDef is one embedded prompt. Arguments named in the frontmatter
// are substituted into the body as {{name}}.
type promptDef struct {
	Name        string
	Description string                `yaml:"description"`
	Arguments   []*mcp.PromptArgument `yaml:"-"`
	RawArgs     []promptArg           `yaml:"arguments"`
	Body        string                `yaml:"-"`
}

type promptArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// loadPrompts reads every prompts/*.md file, sorted by name.
func loadPrompts(fsys fs.FS) ([]promptDef, error) {
	names, err := fs.Glob(fsys, "prompts/*.md")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	prompts := make([]promptDef, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		p, err := parsePrompt(content)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		p.Name = strings.TrimSuffix(strings.TrimPrefix(name, "prompts/"), ".md")
		prompts = append(prompts, p)
	}
	return prompts, nil
}

// parsePrompt splits a "---" delimited YAML header from the body. Content
// without a header is all body.
func parsePrompt(content []byte) (promptDef, error) {
	var p promptDef
	header, body, ok := splitFrontmatter(content)
	if !ok {
		p.Body = string(content)
		return p, nil
	}
	if err := yaml.Unmarshal(header, &p); err != nil {
		return p, err
	}
	for _, a := range p.RawArgs {
		p.Arguments = append(p.Arguments, &mcp.PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	p.Body = body
	return p, nil
}

func splitFrontmatter(content []byte) (header []byte, body string, ok bool) {
	rest, found := bytes.CutPrefix(content, []byte("---\n"))
	if !found {
		return nil, "", false
	}
	header, after, found := bytes.Cut(rest, []byte("\n---\n"))
	if !found {
		return nil, "", false
	}
	return header, strings.TrimPrefix(string(after), "\n"), true
}

// render fills {{name}} placeholders. Missing required arguments are an
// error; missing optional ones become empty.
func (p promptDef) render(args map[string]string) (string, error) {
	pairs := make([]string, 0, 2*len(p.RawArgs))
	for _, a := range p.RawArgs {
		v, ok := args[a.Name]
		if !ok && a.Required {
			return "", fmt.Errorf("missing required argument %q", a.Name)
		}
		pairs = append(pairs, "{{"+a.Name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Body), nil
}

func (s *Server) registerPrompts() error {
	prompts, err := loadPrompts(promptFiles)
	if err != nil {
		return err
	}
	for _, p := range prompts {
		s.server.AddPrompt(&mcp.Prompt{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   p.Arguments,
		}, p.handler())
	}
	return nil
}

func (p promptDef) handler() mcp.PromptHandler {
	return func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		text, err := p.render(args)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: p.Description,
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			}},
		}, nil
	}
}
