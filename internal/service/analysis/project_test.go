package analysis

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/tangle/internal/testutil"
	"github.com/panbanda/tangle/pkg/config"
)

func TestOpenProject(t *testing.T) {
	root, _ := writeProject(t)
	cfg := projectConfig()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")

	p, err := OpenProject(context.Background(), cfg, []string{root}, ProjectOptions{})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, root, p.Root)
	assert.Equal(t, 4, p.Files.Len())
	require.NotNil(t, p.Service.results, "cache enabled by default")

	results, err := p.DeadCode(context.Background(), DeadCodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, results.FilesAnalyzed)

	deps, err := p.Dependencies(context.Background(), "src/main.ts", DependencyOptions{})
	require.NoError(t, err)
	assert.Len(t, deps.Dependencies, 2)
}

func TestOpenProject_NoFiles(t *testing.T) {
	dir := testutil.CreateFileTree(t, t.TempDir(), testutil.F("README.md", "# empty\n"))
	_, err := OpenProject(context.Background(), config.DefaultConfig(), []string{dir}, ProjectOptions{})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestOpenProject_CacheDisabled(t *testing.T) {
	root, _ := writeProject(t)
	cfg := projectConfig()
	cfg.Cache.Enabled = false

	p, err := OpenProject(context.Background(), cfg, []string{root}, ProjectOptions{})
	require.NoError(t, err)
	defer p.Close()
	assert.Nil(t, p.Service.results)
}

func TestOpenProject_Revision(t *testing.T) {
	repo := testutil.GitRepo(t,
		[]testutil.File{
			testutil.F("src/util.ts", "export function helper() {}\nexport function old() {}\n"),
			testutil.F("src/main.ts", "import { helper } from './util';\nhelper();\n"),
		},
		[]testutil.File{
			testutil.F("src/main.ts", "import { helper, old } from './util';\nhelper();\nold();\n"),
		},
	)
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false

	unusedExports := func(ref string) []string {
		p, err := OpenProject(context.Background(), cfg, []string{repo}, ProjectOptions{Ref: ref})
		require.NoError(t, err)
		defer p.Close()
		assert.Empty(t, p.Root)
		assert.Equal(t, ref, p.Revision)
		assert.Len(t, p.Commit, 40)

		results, err := p.DeadCode(context.Background(), DeadCodeOptions{})
		require.NoError(t, err)
		var names []string
		for _, it := range results.UnusedExports {
			names = append(names, it.SymbolName)
		}
		return names
	}

	assert.Contains(t, unusedExports("HEAD~1"), "old")
	assert.NotContains(t, unusedExports("HEAD"), "old")
}

func TestProjectReload(t *testing.T) {
	root, _ := writeProject(t)
	cfg := projectConfig()
	cfg.Cache.Enabled = false

	p, err := OpenProject(context.Background(), cfg, []string{root}, ProjectOptions{})
	require.NoError(t, err)
	defer p.Close()

	first, err := p.DeadCode(context.Background(), DeadCodeOptions{})
	require.NoError(t, err)
	before := len(first.UnusedExports)

	testutil.WriteFile(t, filepath.Join(root, "src/extra.ts"), "export const extra = 1;\n")
	require.NoError(t, p.Reload(context.Background(), nil))
	assert.Equal(t, 5, p.Files.Len())

	second, err := p.DeadCode(context.Background(), DeadCodeOptions{})
	require.NoError(t, err)
	assert.Len(t, second.UnusedExports, before+1)
}

func TestProjectReload_Revision(t *testing.T) {
	p := &Project{Revision: "HEAD"}
	assert.Error(t, p.Reload(context.Background(), nil))
}
