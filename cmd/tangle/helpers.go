package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/progress"
	"github.com/panbanda/tangle/internal/service/analysis"
	"github.com/panbanda/tangle/pkg/config"
	"github.com/panbanda/tangle/pkg/models"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// loadConfig loads --config, or searches the working directory.
func loadConfig() (*config.Config, error) {
	var opts []config.LoadOption
	if cfgFile != "" {
		opts = append(opts, config.WithPath(cfgFile))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Output format: text, json, markdown, toon (default from config)")
	cmd.Flags().StringP("output", "o", "", "Write output to file")
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("ref", "", "Analyze a git revision instead of the working tree")
	cmd.Flags().Bool("no-cache", false, "Bypass the results cache")
}

// newFormatter builds a formatter from the output flags, falling back to
// the configured format.
func newFormatter(cmd *cobra.Command, cfg *config.Config) (*output.Formatter, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	outputFile, _ := cmd.Flags().GetString("output")
	colored := cfg.Output.Color && !color.NoColor
	if outputFile == "" {
		return output.NewWriterFormatter(output.ParseFormat(format), cmd.OutOrStdout(), colored), nil
	}
	return output.NewFormatter(output.ParseFormat(format), outputFile, colored)
}

// openProject scans and loads paths with a progress indicator on stderr. It returns
// nil without error when there is nothing to analyze.
func openProject(cmd *cobra.Command, cfg *config.Config, paths []string) (*analysis.Project, error) {
	ref, _ := cmd.Flags().GetString("ref")

	loader := progress.NewLoader(cmd.ErrOrStderr(), "Loading files...")
	project, err := analysis.OpenProject(cmd.Context(), cfg, paths, analysis.ProjectOptions{
		Ref:        ref,
		OnProgress: loader.Func(),
	})
	if errors.Is(err, analysis.ErrNoFiles) {
		loader.Done(progress.Skip("no source files"))
		color.Yellow("No source files found")
		return nil, nil
	}
	loader.Done(err)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// parseCategories validates --category values.
func parseCategories(names []string) ([]models.DeadCodeCategory, error) {
	categories := make([]models.DeadCodeCategory, 0, len(names))
	for _, name := range names {
		c, ok := models.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q (want one of %v)", name, models.Categories)
		}
		categories = append(categories, c)
	}
	return categories, nil
}
