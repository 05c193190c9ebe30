package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

var formatNames = map[string]Format{
	"text":     FormatText,
	"json":     FormatJSON,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"toon":     FormatTOON,
}

// ParseFormat converts a string to Format. Unknown names mean text.
func ParseFormat(s string) Format {
	if f, ok := formatNames[strings.ToLower(s)]; ok {
		return f
	}
	return FormatText
}

// Renderable is a view that draws itself for humans and hands a plain
// payload to the structured encoders.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	RenderData() any
}

// Formatter writes reports in one format to stdout or a file.
type Formatter struct {
	format  Format
	writer  io.Writer
	closer  io.Closer
	colored bool
}

// NewFormatter writes to output, or stdout when output is empty. Files are
// never colored.
func NewFormatter(format Format, output string, colored bool) (*Formatter, error) {
	if output == "" {
		return NewWriterFormatter(format, os.Stdout, colored), nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, err
	}
	return &Formatter{format: format, writer: f, closer: f}, nil
}

// NewWriterFormatter creates a formatter writing to w.
func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func (f *Formatter) Writer() io.Writer { return f.writer }
func (f *Formatter) Format() Format    { return f.format }
func (f *Formatter) Colored() bool     { return f.colored }

// Output writes data. Renderables draw themselves in text and markdown;
// everything else goes through Encode.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	if !ok {
		return Encode(f.writer, f.format, data)
	}
	switch f.format {
	case FormatText:
		return r.RenderText(f.writer, f.colored)
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	default:
		return Encode(f.writer, f.format, r.RenderData())
	}
}

// Encode writes v as TOON, or as indented JSON for every other format.
// Markdown wraps the JSON in a fenced block.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatTOON:
		out, err := toon.Marshal(v, toon.WithIndent(2))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	case FormatMarkdown:
		if _, err := io.WriteString(w, "```json\n"); err != nil {
			return err
		}
		if err := encodeJSON(w, v); err != nil {
			return err
		}
		_, err := io.WriteString(w, "```\n")
		return err
	default:
		return encodeJSON(w, v)
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Status lines. Plain output carries a prefix instead of a color.

func (f *Formatter) message(attr color.Attribute, prefix, format string, args ...any) {
	if f.colored {
		color.New(attr).Fprintf(f.writer, format+"\n", args...)
		return
	}
	fmt.Fprintf(f.writer, prefix+format+"\n", args...)
}

func (f *Formatter) Success(format string, args ...any) {
	f.message(color.FgGreen, "", format, args...)
}

func (f *Formatter) Warning(format string, args ...any) {
	f.message(color.FgYellow, "WARNING: ", format, args...)
}

func (f *Formatter) Error(format string, args ...any) {
	f.message(color.FgRed, "ERROR: ", format, args...)
}

func (f *Formatter) Info(format string, args ...any) {
	f.message(color.FgCyan, "", format, args...)
}

// CategoryColor colors text by dead-code category. Cheap removals are
// green, exports that may have outside callers are red.
func CategoryColor(category, text string) string {
	switch category {
	case "unusedImport", "unusedVariable", "unusedArgument":
		return color.GreenString(text)
	case "deadFunction", "unusedProp":
		return color.YellowString(text)
	case "unusedExport":
		return color.RedString(text)
	default:
		return text
	}
}
