package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/logging"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	prof    profiler
)

// profiler writes a CPU profile for the duration of one command and a heap
// profile when it ends.
type profiler struct {
	prefix string
	cpu    *os.File
}

func (p *profiler) start() error {
	if p.prefix == "" {
		return nil
	}
	f, err := os.Create(p.prefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("start CPU profile: %w", err)
	}
	p.cpu = f
	return nil
}

func (p *profiler) stop(w io.Writer) error {
	if p.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	cpuPath := p.cpu.Name()
	p.cpu.Close()
	p.cpu = nil

	heapPath := p.prefix + ".mem.pprof"
	f, err := os.Create(heapPath)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	color.New(color.FgGreen).Fprintf(w, "Profiles written to %s and %s\n", cpuPath, heapPath)
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "tangle",
	Short: "Find dead code and trace imports in TypeScript and JavaScript projects",
	Long: `tangle parses every source file once, then answers two questions from the
shared metadata:

  deadcode   which exports, imports, functions, variables, props and
             arguments nothing uses
  deps       what a file imports, who imports it, the leaf-first build
             order and any import cycles

Languages: .ts .tsx .js .jsx .mjs .cjs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		logging.Setup(verbose, cmd.ErrOrStderr())
		return prof.start()
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return prof.stop(cmd.ErrOrStderr())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (.toml, .yaml or .json); defaults to tangle.toml in the project")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&prof.prefix, "pprof", "", "write <prefix>.cpu.pprof and <prefix>.mem.pprof")
}
