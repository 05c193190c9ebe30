// Package graphstore exports dependency graphs to Neo4j.
//
// Files become (:Module {path}) nodes joined by [:IMPORTS] relationships,
// bare specifiers become (:Package {name}) nodes, and type declarations
// become (:TypeEntity) nodes attached to their module with [:DECLARES].
// Writes are idempotent MERGEs sent in UNWIND batches.
package graphstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/panbanda/tangle/pkg/analyzer/depgraph"
	"github.com/panbanda/tangle/pkg/config"
)

// Counts summarizes what a write created.
type Counts struct {
	Nodes         int
	Relationships int
}

func (c *Counts) add(o Counts) {
	c.Nodes += o.Nodes
	c.Relationships += o.Relationships
}

// Executor runs one Cypher statement.
type Executor interface {
	Execute(ctx context.Context, cypher string, params map[string]any) (Counts, error)
}

// driverExecutor runs statements through a Neo4j driver.
type driverExecutor struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d *driverExecutor) Execute(ctx context.Context, cypher string, params map[string]any) (Counts, error) {
	res, err := neo4j.ExecuteQuery(ctx, d.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(d.database))
	if err != nil {
		return Counts{}, err
	}
	c := res.Summary.Counters()
	return Counts{
		Nodes:         c.NodesCreated(),
		Relationships: c.RelationshipsCreated(),
	}, nil
}

// Store writes graphs through an Executor.
type Store struct {
	exec      Executor
	batchSize int
	closer    func(context.Context) error
}

// New creates a store over exec. batchSize below 1 means 500.
func New(exec Executor, batchSize int) *Store {
	if batchSize < 1 {
		batchSize = 500
	}
	return &Store{exec: exec, batchSize: batchSize}
}

// Open connects to the database described by cfg and verifies
// connectivity.
func Open(ctx context.Context, cfg config.Neo4jConfig) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: connect %s: %w", cfg.URI, err)
	}
	s := New(&driverExecutor{driver: driver, database: cfg.Database}, cfg.BatchSize)
	s.closer = driver.Close
	return s, nil
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

const (
	constraintModule  = `CREATE CONSTRAINT tangle_module_path IF NOT EXISTS FOR (m:Module) REQUIRE m.path IS UNIQUE`
	constraintPackage = `CREATE CONSTRAINT tangle_package_name IF NOT EXISTS FOR (p:Package) REQUIRE p.name IS UNIQUE`

	mergeModules = `UNWIND $rows AS row
MERGE (m:Module {path: row.path})
SET m.depth = row.depth`

	mergeImports = `UNWIND $rows AS row
MATCH (a:Module {path: row.from})
MATCH (b:Module {path: row.to})
MERGE (a)-[:IMPORTS]->(b)`

	mergePackages = `UNWIND $rows AS row
MERGE (p:Package {name: row.name})
WITH p, row
MATCH (m:Module {path: row.from})
MERGE (m)-[:IMPORTS]->(p)`

	mergeTypes = `UNWIND $rows AS row
MATCH (m:Module {path: row.path})
MERGE (t:TypeEntity {path: row.path, name: row.name})
SET t.kind = row.kind, t.line = row.line, t.directlyUsed = row.used
MERGE (m)-[:DECLARES]->(t)`
)

// Export writes g. Modules are written before the relationships that
// reference them.
func (s *Store) Export(ctx context.Context, g *depgraph.Graph) (Counts, error) {
	var total Counts
	for _, stmt := range []string{constraintModule, constraintPackage} {
		c, err := s.exec.Execute(ctx, stmt, nil)
		if err != nil {
			return total, fmt.Errorf("neo4j: create constraint: %w", err)
		}
		total.add(c)
	}

	steps := []struct {
		name   string
		cypher string
		rows   []map[string]any
	}{
		{"modules", mergeModules, moduleRows(g)},
		{"imports", mergeImports, importRows(g)},
		{"packages", mergePackages, packageRows(g)},
		{"types", mergeTypes, typeRows(g)},
	}
	for _, step := range steps {
		c, err := s.writeBatches(ctx, step.cypher, step.rows)
		total.add(c)
		if err != nil {
			return total, fmt.Errorf("neo4j: write %s: %w", step.name, err)
		}
	}
	return total, nil
}

func (s *Store) writeBatches(ctx context.Context, cypher string, rows []map[string]any) (Counts, error) {
	var total Counts
	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := min(start+s.batchSize, len(rows))
		c, err := s.exec.Execute(ctx, cypher, map[string]any{"rows": rows[start:end]})
		if err != nil {
			return total, err
		}
		total.add(c)
	}
	return total, nil
}

func moduleRows(g *depgraph.Graph) []map[string]any {
	rows := make([]map[string]any, 0, len(g.Items))
	for _, it := range g.Items {
		rows = append(rows, map[string]any{"path": it.FilePath, "depth": it.Depth})
	}
	return rows
}

func importRows(g *depgraph.Graph) []map[string]any {
	from := make([]string, 0, len(g.Adjacency))
	for f := range g.Adjacency {
		from = append(from, f)
	}
	sort.Strings(from)

	var rows []map[string]any
	for _, f := range from {
		for _, to := range g.Adjacency[f] {
			rows = append(rows, map[string]any{"from": f, "to": to})
		}
	}
	return rows
}

func packageRows(g *depgraph.Graph) []map[string]any {
	rows := make([]map[string]any, 0, len(g.External))
	for _, ext := range g.External {
		rows = append(rows, map[string]any{"name": ext.FilePath, "from": ext.DirectImporter})
	}
	return rows
}

func typeRows(g *depgraph.Graph) []map[string]any {
	rows := make([]map[string]any, 0, len(g.TypeEntities))
	for _, te := range g.TypeEntities {
		rows = append(rows, map[string]any{
			"path": te.FilePath,
			"name": te.Name,
			"kind": string(te.Kind),
			"line": te.Line,
			"used": te.IsDirectlyUsed,
		})
	}
	return rows
}
