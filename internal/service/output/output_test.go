package output

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/pkg/models"
)

func results() *models.DeadCodeResults {
	r := models.NewDeadCodeResults()
	r.Add(models.DeadCodeItem{FilePath: "src/util.ts", SymbolName: "unused", Line: 2, Kind: models.KindExport, Category: models.CategoryUnusedExport})
	r.TotalCount = r.Recount()
	r.FilesAnalyzed = 1
	return r
}

func TestRender(t *testing.T) {
	view := output.NewDeadCodeView(results(), "")

	tests := []struct {
		name   string
		format output.Format
		data   any
		check  func(t *testing.T, out string)
	}{
		{
			name:   "json renderable uses its data",
			format: output.FormatJSON,
			data:   view,
			check: func(t *testing.T, out string) {
				var decoded models.DeadCodeResults
				require.NoError(t, json.Unmarshal([]byte(out), &decoded))
				assert.Equal(t, 1, decoded.TotalCount)
			},
		},
		{
			name:   "toon",
			format: output.FormatTOON,
			data:   results(),
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "unused_exports")
				assert.False(t, strings.HasPrefix(out, "{"))
			},
		},
		{
			name:   "markdown renderable",
			format: output.FormatMarkdown,
			data:   view,
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, "# Dead Code"), out)
			},
		},
		{
			name:   "markdown raw is fenced",
			format: output.FormatMarkdown,
			data:   map[string]int{"n": 1},
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, "```json\n"), out)
				assert.True(t, strings.HasSuffix(out, "\n```"), out)
			},
		},
		{
			name:   "text renderable is uncolored",
			format: output.FormatText,
			data:   view,
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "src/util.ts:2")
				assert.NotContains(t, out, "\x1b[")
			},
		},
		{
			name:   "text raw falls back to toon",
			format: output.FormatText,
			data:   map[string]int{"total_count": 7},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "total_count: 7")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(WithFormat(tt.format)).Render(tt.data)
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(out, "\n"))
			tt.check(t, out)
		})
	}
}

func TestRenderLimit(t *testing.T) {
	rows := make([]string, 100)
	for i := range rows {
		rows[i] = strings.Repeat("x", 9)
	}
	data := map[string][]string{"rows": rows}

	full, err := New(WithFormat(output.FormatJSON), WithLimit(0)).Render(data)
	require.NoError(t, err)

	out, err := New(WithFormat(output.FormatJSON), WithLimit(200)).Render(data)
	require.NoError(t, err)
	head, note, ok := strings.Cut(out, "\n... truncated ")
	require.True(t, ok, out)
	assert.LessOrEqual(t, len(head), 200)
	assert.True(t, strings.HasPrefix(full, head))
	assert.Contains(t, note, "of "+strconv.Itoa(len(full))+" bytes")
}

func TestRenderUnderLimit(t *testing.T) {
	out, err := New(WithFormat(output.FormatJSON)).Render(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.NotContains(t, out, "truncated")
}
