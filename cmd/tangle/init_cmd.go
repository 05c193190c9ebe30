package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/pkg/config"
)

type initOptions struct {
	path   string
	format string
	force  bool
	stdout bool
}

var initOpts initOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a tangle.toml with every setting at its default",
	Long: `Writes the default configuration so aliases, ignore globs and cache
settings can be edited in place. The encoding follows the file extension
(.toml or .json) unless --format is given.

Examples:
  tangle init
  tangle init -o config/tangle.json
  tangle init --stdout > tangle.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return initOpts.run(cmd.OutOrStdout())
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initOpts.path, "output", "o", "tangle.toml", "where to write the file")
	f.StringVar(&initOpts.format, "format", "", "toml or json (default: from the file extension)")
	f.BoolVar(&initOpts.force, "force", false, "replace an existing file")
	f.BoolVar(&initOpts.stdout, "stdout", false, "print the config instead of writing it")
	rootCmd.AddCommand(initCmd)
}

func (o initOptions) encoding() string {
	if o.format != "" {
		return strings.ToLower(o.format)
	}
	if strings.EqualFold(filepath.Ext(o.path), ".json") {
		return "json"
	}
	return "toml"
}

func (o initOptions) run(w io.Writer) error {
	content, err := renderDefaultConfig(o.encoding())
	if err != nil {
		return err
	}
	if o.stdout {
		_, err := io.WriteString(w, content)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(o.path), err)
	}
	mode := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !o.force {
		mode |= os.O_EXCL
	}
	f, err := os.OpenFile(o.path, mode, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists; pass --force to replace it", o.path)
	}
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", o.path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(w, "Wrote %s\n", o.path)
	return nil
}

// renderDefaultConfig encodes config.DefaultConfig as toml or json.
func renderDefaultConfig(encoding string) (string, error) {
	cfg := config.DefaultConfig()
	switch encoding {
	case "toml":
		body, err := toml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("encode toml: %w", err)
		}
		return "# tangle configuration\n" +
			"# [resolve.aliases] maps import prefixes to directories, e.g. \"@/\" = \"src/\"\n\n" +
			string(body), nil
	case "json":
		body, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(body) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported config format %q (want toml or json)", encoding)
	}
}
