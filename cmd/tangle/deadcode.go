package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/service/analysis"
)

var deadcodeCmd = &cobra.Command{
	Use:     "deadcode [path...]",
	Aliases: []string{"dc"},
	Short:   "Find unused exports, imports, functions, variables, props and arguments",
	Long: `Finds dead code across every TypeScript and JavaScript file under the given
paths. An export counts as used when any analyzed file imports it.

Examples:
  tangle deadcode                          # Current directory
  tangle dc src --category unusedImport    # Only unused imports
  tangle deadcode --ref main -f json       # The main branch, as JSON`,
	RunE: runDeadCode,
}

func init() {
	deadcodeCmd.Flags().StringSlice("category", nil, "Only report these categories (repeatable)")
	addOutputFlags(deadcodeCmd)
	addAnalysisFlags(deadcodeCmd)

	rootCmd.AddCommand(deadcodeCmd)
}

func runDeadCode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("category")
	categories, err := parseCategories(names)
	if err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")

	project, err := openProject(cmd, cfg, getPaths(args))
	if err != nil || project == nil {
		return err
	}
	defer project.Close()

	result, err := project.DeadCode(cmd.Context(), analysis.DeadCodeOptions{
		Categories: categories,
		NoCache:    noCache,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewDeadCodeView(result, project.Root))
}
