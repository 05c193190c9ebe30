package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panbanda/tangle/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
	Long: `Starts an MCP server over stdio that exposes tangle's analyses as tools.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "tangle": {
        "command": "tangle",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_deadcode       Unused exports, imports, functions, variables, props, arguments
  - analyze_dependencies   Dependencies, dependents, build order and cycles of a file`,
	RunE: runMCP,
}

var mcpManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the MCP server manifest (server.json)",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpManifestCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return mcpserver.NewServer(version, cfg).Run(cmd.Context())
}
