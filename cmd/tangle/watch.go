package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/metrics"
	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/service/analysis"
	"github.com/panbanda/tangle/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run dead-code analysis whenever source files change",
	Long: `Runs dead-code analysis, then watches path and runs it again after each burst
of changes settles. Every run rescans the tree and discards all cached
metadata.

Examples:
  tangle watch
  tangle watch src --metrics-addr :9090`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (default from config)")
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before re-running (default from config)")
	watchCmd.Flags().StringSlice("category", nil, "Only report these categories (repeatable)")
	addOutputFlags(watchCmd)

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("category")
	categories, err := parseCategories(names)
	if err != nil {
		return err
	}
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	ctx := cmd.Context()

	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		addr = cfg.Watch.MetricsAddr
	}
	if addr != "" {
		srv := metrics.NewServer(addr)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
		color.Cyan("Metrics on http://%s/metrics", srv.Addr())
	}

	project, err := analysis.OpenProject(ctx, cfg, []string{path}, analysis.ProjectOptions{})
	if err != nil {
		return err
	}
	defer project.Close()

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := func(ctx context.Context) {
		result, err := project.DeadCode(ctx, analysis.DeadCodeOptions{Categories: categories, NoCache: true})
		if err != nil {
			formatter.Error("analysis failed: %v", err)
			return
		}
		if err := formatter.Output(output.NewDeadCodeView(result, project.Root)); err != nil {
			formatter.Error("%v", err)
		}
	}
	report(ctx)

	debounce, _ := cmd.Flags().GetDuration("debounce")
	w, err := watch.NewWatcher(project.Root, cfg, debounce)
	if err != nil {
		return err
	}
	defer w.Stop()
	w.SetOutput(cmd.ErrOrStderr())

	w.SetCallback(func(ctx context.Context, changed []string) {
		slog.Debug("reloading", "changed", len(changed))
		if err := project.Reload(ctx, nil); err != nil {
			if errors.Is(err, analysis.ErrNoFiles) {
				formatter.Warning("no source files left under %s", project.Root)
				return
			}
			formatter.Error("reload failed: %v", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout())
		report(ctx)
	})

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
