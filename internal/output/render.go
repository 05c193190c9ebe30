package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// heading writes title underlined with rule, bold when colored.
func heading(w io.Writer, title string, rule byte, colored bool, attrs ...color.Attribute) {
	if colored {
		color.New(append([]color.Attribute{color.Bold}, attrs...)...).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(string(rule), len(title)))
}

// markdownRow writes one pipe table row. Pipes inside cells are escaped so
// union types do not split columns.
func markdownRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}

// Table is a titled grid. Data, when set, replaces the rows in JSON and
// TOON output.
type Table struct {
	Title   string     `json:"-"`
	Headers []string   `json:"-"`
	Rows    [][]string `json:"-"`
	Footer  []string   `json:"-"`
	Data    any        `json:"data,omitempty"`
}

func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows, Footer: footer, Data: data}
}

// RenderData returns Data, or one header-keyed map per row.
func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		out = append(out, m)
	}
	return out
}

func borderless(w io.Writer) *tablewriter.Table {
	left := tw.CellAlignment{Global: tw.AlignLeft}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: left, Formatting: tw.CellFormatting{AutoFormat: tw.On}},
			Row:    tw.CellConfig{Alignment: left},
			Footer: tw.CellConfig{Alignment: left},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		heading(w, t.Title, '=', colored)
		fmt.Fprintln(w)
	}

	table := borderless(w)
	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, cell := range t.Footer {
			footer[i] = cell
		}
		table.Footer(footer...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	markdownRow(w, t.Headers)
	fmt.Fprintf(w, "|%s\n", strings.Repeat(" --- |", len(t.Headers)))
	for _, row := range t.Rows {
		markdownRow(w, row)
	}
	if len(t.Footer) > 0 {
		markdownRow(w, t.Footer)
	}
	fmt.Fprintln(w)
	return nil
}

// Section is free text under a heading, with nested subsections.
type Section struct {
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content,omitempty"`
	Sections []Section `json:"sections,omitempty"`
	Data     any       `json:"data,omitempty"`
}

func (s *Section) RenderData() any {
	if s.Data != nil {
		return s.Data
	}
	return s
}

func (s *Section) RenderText(w io.Writer, colored bool) error {
	s.text(w, colored, '=')
	return nil
}

// text renders the top level with '=' rules and every nested level with '-'.
func (s *Section) text(w io.Writer, colored bool, rule byte) {
	if s.Title != "" {
		heading(w, s.Title, rule, colored)
	}
	if s.Content != "" {
		fmt.Fprintln(w, s.Content)
	}
	for i := range s.Sections {
		fmt.Fprintln(w)
		s.Sections[i].text(w, colored, '-')
	}
}

func (s *Section) RenderMarkdown(w io.Writer) error {
	s.markdown(w, 2)
	return nil
}

func (s *Section) markdown(w io.Writer, depth int) {
	if s.Title != "" {
		fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", depth), s.Title)
	}
	if s.Content != "" {
		fmt.Fprintf(w, "%s\n\n", s.Content)
	}
	for i := range s.Sections {
		s.Sections[i].markdown(w, depth+1)
	}
}

// Report is a titled sequence of tables and sections.
type Report struct {
	Title    string       `json:"title,omitempty"`
	Sections []Renderable `json:"-"`
	Data     any          `json:"data,omitempty"`
}

// RenderData returns Data, or the title with each part's payload.
func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, 0, len(r.Sections))
	for _, s := range r.Sections {
		parts = append(parts, s.RenderData())
	}
	return map[string]any{"title": r.Title, "sections": parts}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if r.Title != "" {
		heading(w, r.Title, '=', colored, color.FgCyan)
		fmt.Fprintln(w)
	}
	for i, s := range r.Sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := s.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, s := range r.Sections {
		if err := s.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}
