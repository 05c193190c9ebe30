package graphstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/tangle/pkg/analyzer/depgraph"
	"github.com/panbanda/tangle/pkg/models"
)

type call struct {
	cypher string
	rows   int
}

type fakeExecutor struct {
	calls  []call
	failOn string
}

func (f *fakeExecutor) Execute(_ context.Context, cypher string, params map[string]any) (Counts, error) {
	if f.failOn != "" && strings.Contains(cypher, f.failOn) {
		return Counts{}, errors.New("boom")
	}
	n := 0
	if rows, ok := params["rows"].([]map[string]any); ok {
		n = len(rows)
	}
	f.calls = append(f.calls, call{cypher: cypher, rows: n})
	return Counts{Nodes: n}, nil
}

func sampleGraph() *depgraph.Graph {
	return &depgraph.Graph{
		Root: "src/main.ts",
		Items: []models.DependencyItem{
			{FilePath: "src/main.ts"},
			{FilePath: "src/util.ts", Depth: 1, DirectImporter: "src/main.ts"},
			{FilePath: "src/types.ts", Depth: 1, DirectImporter: "src/main.ts"},
		},
		Adjacency: map[string][]string{
			"src/main.ts": {"src/util.ts", "src/types.ts"},
			"src/util.ts": {"src/types.ts"},
		},
		External: []models.DependencyItem{
			{FilePath: "react", Depth: 1, IsExternalPackage: true, DirectImporter: "src/main.ts"},
		},
		TypeEntities: []models.TypeEntity{
			{Name: "User", FilePath: "src/types.ts", Line: 1, Kind: models.ExportKind("interface"), IsDirectlyUsed: true},
		},
	}
}

func TestExport(t *testing.T) {
	exec := &fakeExecutor{}
	counts, err := New(exec, 2).Export(context.Background(), sampleGraph())
	require.NoError(t, err)

	var got []call
	for _, c := range exec.calls {
		if strings.HasPrefix(c.cypher, "CREATE CONSTRAINT") {
			continue
		}
		got = append(got, c)
	}
	// 3 modules in batches of 2, then 3 imports, 1 package, 1 type.
	require.Len(t, got, 6)
	assert.Equal(t, mergeModules, got[0].cypher)
	assert.Equal(t, 2, got[0].rows)
	assert.Equal(t, 1, got[1].rows)
	assert.Equal(t, mergeImports, got[2].cypher)
	assert.Equal(t, mergeImports, got[3].cypher)
	assert.Equal(t, mergePackages, got[4].cypher)
	assert.Equal(t, mergeTypes, got[5].cypher)
	assert.Equal(t, 3+3+1+1, counts.Nodes)
}

func TestExport_Error(t *testing.T) {
	exec := &fakeExecutor{failOn: "MERGE (a)-[:IMPORTS]->(b)"}
	_, err := New(exec, 0).Export(context.Background(), sampleGraph())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write imports")
}

func TestExport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeExecutor{}, 1).Export(ctx, sampleGraph())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportRowsSorted(t *testing.T) {
	rows := importRows(sampleGraph())
	require.Len(t, rows, 3)
	assert.Equal(t, "src/main.ts", rows[0]["from"])
	assert.Equal(t, "src/util.ts", rows[0]["to"])
	assert.Equal(t, "src/util.ts", rows[2]["from"])
}

func TestNewDefaultsBatchSize(t *testing.T) {
	assert.Equal(t, 500, New(&fakeExecutor{}, 0).batchSize)
	assert.NoError(t, New(&fakeExecutor{}, 1).Close(context.Background()))
}
