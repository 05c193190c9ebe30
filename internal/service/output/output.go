// Package output turns analysis results into the text bodies of MCP tool
// responses.
package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/panbanda/tangle/internal/output"
)

// DefaultLimit caps a response so one call cannot flood a model's context.
const DefaultLimit = 256 << 10

// Renderer encodes results in one format, uncolored.
type Renderer struct {
	format output.Format
	limit  int
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithFormat(f output.Format) Option {
	return func(r *Renderer) { r.format = f }
}

// WithLimit truncates responses longer than n bytes. Zero disables the cap.
func WithLimit(n int) Option {
	return func(r *Renderer) { r.limit = n }
}

// New defaults to TOON with DefaultLimit.
func New(opts ...Option) *Renderer {
	r := &Renderer{format: output.FormatTOON, limit: DefaultLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns data without trailing newlines. Values that cannot draw
// themselves are encoded as TOON when text is requested.
func (r *Renderer) Render(data any) (string, error) {
	var buf bytes.Buffer
	var err error
	if _, ok := data.(output.Renderable); !ok && r.format == output.FormatText {
		err = output.Encode(&buf, output.FormatTOON, data)
	} else {
		err = output.NewWriterFormatter(r.format, &buf, false).Output(data)
	}
	if err != nil {
		return "", err
	}
	return r.clip(strings.TrimRight(buf.String(), "\n")), nil
}

// clip cuts s at the last line break inside the limit and says how much
// was dropped.
func (r *Renderer) clip(s string) string {
	if r.limit <= 0 || len(s) <= r.limit {
		return s
	}
	cut := strings.LastIndexByte(s[:r.limit], '\n')
	if cut < 0 {
		cut = r.limit
	}
	return fmt.Sprintf("%s\n... truncated %d of %d bytes; narrow paths or categories to see the rest",
		s[:cut], len(s)-cut, len(s))
}
