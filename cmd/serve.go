package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/prefablink/internal/mcptool"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project to MCP clients over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()

		logger.Info("serving MCP over stdio", "project", cfg.Project)
		return mcptool.Serve(ws, Version)
	},
}
