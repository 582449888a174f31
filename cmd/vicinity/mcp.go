package main

import (
	"github.com/spf13/cobra"

	"github.com/vicinitylabs/vicinity"
	mcpAdapter "github.com/vicinitylabs/vicinity/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long:  `Exposes directory search and the onboarding schema as Model Context Protocol tools over stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := vicinity.New()
		server := mcpAdapter.NewServer(app.Directory, app.Registry, vicinity.Version)
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
