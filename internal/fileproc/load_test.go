package fileproc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/tangle/pkg/source"
	"github.com/panbanda/tangle/pkg/testutil"
)

func TestLoadUnits(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		"src/a.ts":    "import { b } from './b';\n",
		"src/b.ts":    "export const b = 1;\n",
		"src/big.ts":  "export const big = '" + strings.Repeat("x", 200) + "';\n",
		"src/bad.tsx": "export const = ;;; <<<",
	})

	require.Equal(t, []string{"src/a.ts", "src/b.ts", "src/bad.tsx", "src/big.ts"}, testutil.Paths(t, fs, "src"))

	files := []string{"src/a.ts", "src/b.ts", "src/missing.ts", "src/big.ts", "src/bad.tsx"}
	set, errs := LoadUnits(context.Background(), files, source.NewFS(fs), 100)
	t.Cleanup(set.Close)

	assert.Equal(t, files, set.Paths(), "units keep input order, failures included")

	a, _ := set.Get("src/a.ts")
	assert.True(t, a.Parsed())

	missing, _ := set.Get("src/missing.ts")
	assert.False(t, missing.Parsed())
	assert.Error(t, missing.ParseErr)

	big, _ := set.Get("src/big.ts")
	assert.False(t, big.Parsed())
	assert.ErrorIs(t, big.ParseErr, ErrFileTooLarge)

	// Syntax errors still produce a tree.
	bad, _ := set.Get("src/bad.tsx")
	assert.True(t, bad.Parsed())

	assert.Equal(t, []string{"src/missing.ts", "src/big.ts"}, errs.Paths())
	assert.ErrorIs(t, errs, ErrFileTooLarge)
}

func TestLoadUnits_Empty(t *testing.T) {
	set, errs := LoadUnits(context.Background(), nil, source.NewFilesystem(), 0)
	assert.Empty(t, errs)
	assert.Equal(t, 0, set.Len())
}
