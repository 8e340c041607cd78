package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/finsift/finsift/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing
document search and queue status tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer st.close()

		mcpserver.Version = Version

		// Stdout carries the protocol; status goes to stderr.
		fmt.Fprintln(os.Stderr, "finsift MCP server started on stdio")

		srv := mcpserver.NewServer(st.searcher, st.queue, localOwner)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
