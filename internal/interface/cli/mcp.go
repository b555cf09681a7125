package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/cmd/cortex/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server over the archive",
	Long: `Start an MCP (Model Context Protocol) server that lets an AI
assistant search and retrieve conversations from your archive.

Configure in your client's MCP config:
  {
    "mcpServers": {
      "cortex": {
        "command": "cortex",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := mcp.StartServer(dbPath); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
