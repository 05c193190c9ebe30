package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/output"
	"github.com/panbanda/tangle/internal/service/analysis"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the results cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [root]",
	Short: "Show results cache entries per analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [root]",
	Short: "Remove every cached result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	addOutputFlags(cacheStatsCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheRoot(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return os.Getwd()
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := cacheRoot(args)
	if err != nil {
		return err
	}
	store, err := analysis.OpenResultsCache(cfg, root)
	if err != nil {
		return err
	}
	st, err := store.Stats()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(st.ByName))
	for name := range st.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(st.ByName[name])})
	}
	footer := []string{"total", strconv.Itoa(st.Entries)}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	title := fmt.Sprintf("Results cache %s (%d bytes, %d expired, oldest %s)",
		store.Dir(), st.Bytes, st.Expired, st.Oldest.Round(time.Second))
	return formatter.Output(output.NewTable(title, []string{"Analysis", "Entries"}, rows, footer, st))
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := cacheRoot(args)
	if err != nil {
		return err
	}
	store, err := analysis.OpenResultsCache(cfg, root)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Cleared %s\n", store.Dir())
	return nil
}
