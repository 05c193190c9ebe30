package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a tangle configuration file against the configuration schema and
checks glob patterns and durations.

Examples:
  tangle config validate                    # Validates default config locations
  tangle config validate -c tangle.toml     # Validates specific file
  tangle config validate --schema           # Print the JSON Schema`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file.

Examples:
  tangle config show                # Show effective config
  tangle config show -c tangle.yaml # Show config from specific file`,
	RunE: runConfigShow,
}

func init() {
	configValidateCmd.Flags().Bool("schema", false, "Print the JSON Schema instead of validating")

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func loadResult() (*config.LoadResult, error) {
	var opts []config.LoadOption
	if cfgFile != "" {
		opts = append(opts, config.WithPath(cfgFile))
	}
	return config.LoadConfig(opts...)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if schema, _ := cmd.Flags().GetBool("schema"); schema {
		fmt.Fprintln(out, string(config.SchemaJSON()))
		return nil
	}

	result, err := loadResult()
	if err != nil {
		color.New(color.FgRed).Fprintln(out, "Configuration validation failed:")
		fmt.Fprintf(out, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.New(color.FgGreen).Fprintf(out, "Configuration valid: %s\n", result.Source)
	} else {
		color.New(color.FgYellow).Fprintln(out, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	result, err := loadResult()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(out, string(content))
	return nil
}
