package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/graphstore"
	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/service/analysis"
)

var depsCmd = &cobra.Command{
	Use:   "deps <root> [path...]",
	Short: "Show what a file depends on, what depends on it, and a build order",
	Long: `Walks the import graph from root. Prints local dependencies with their depth,
external packages, type entities, a leaf-first topological order, import
cycles, and the files that import root directly or transitively.

root is a file path, absolute or relative to the first scanned path.

Examples:
  tangle deps src/main.ts
  tangle deps src/api/client.ts src --format markdown
  tangle deps src/index.ts --ref HEAD~3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDeps,
}

var depsExportCmd = &cobra.Command{
	Use:   "export <root> [path...]",
	Short: "Export the import graph from root to Neo4j",
	Long: `Writes (:Module)-[:IMPORTS]->(:Module), (:Package) and (:TypeEntity) nodes to
Neo4j. Connection settings come from the [neo4j] config section, overridden
by NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD and NEO4J_DATABASE, which may be set
in a .env file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDepsExport,
}

func init() {
	addOutputFlags(depsCmd)
	addAnalysisFlags(depsCmd)

	depsExportCmd.Flags().String("env-file", ".env", "Load NEO4J_* variables from this file when it exists")
	depsExportCmd.Flags().String("ref", "", "Analyze a git revision instead of the working tree")

	depsCmd.AddCommand(depsExportCmd)
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")

	project, err := openProject(cmd, cfg, getPaths(args[1:]))
	if err != nil || project == nil {
		return err
	}
	defer project.Close()

	result, err := project.Dependencies(cmd.Context(), args[0], analysis.DependencyOptions{NoCache: noCache})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewDependencyView(result, project.Root))
}

func runDepsExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg.Neo4j.ApplyEnv()

	project, err := openProject(cmd, cfg, getPaths(args[1:]))
	if err != nil || project == nil {
		return err
	}
	defer project.Close()

	graph, err := project.Service.Graph(args[0], project.Files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	store, err := graphstore.Open(cmd.Context(), cfg.Neo4j)
	if err != nil {
		return err
	}
	defer store.Close(cmd.Context())

	counts, err := store.Export(cmd.Context(), graph)
	if err != nil {
		return err
	}
	color.Green("Exported %d modules and %d packages to %s (%d nodes, %d relationships created)",
		len(graph.Items), len(graph.External), cfg.Neo4j.URI, counts.Nodes, counts.Relationships)
	return nil
}
