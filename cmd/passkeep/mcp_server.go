package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpServerCmd)
}

// mcpServerCmd starts the MCP server for AI coding assistant integration.
var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start the MCP server for AI assistant integration",
	Long: `Start the MCP server that provides read-only vault access to AI assistants.

The server implements the Model Context Protocol (MCP) over stdio transport.
AI agents never receive plaintext passwords.

Available tools:
  - credential_list:       List credentials with metadata (no passwords)
  - credential_exists:     Check if a credential exists
  - credential_get_masked: Get a masked password (e.g. "****WXYZ")
  - vault_health:          Aggregate hygiene report
  - totp_code:             Current TOTP code for a credential

Authentication:
  Set the PASSKEEP_PASSWORD environment variable before starting the server.
  The password is read once and immediately cleared from the environment.

Example MCP configuration:
  {
    "mcpServers": {
      "passkeep": {
        "type": "stdio",
        "command": "/path/to/passkeep",
        "args": ["mcp-server"],
        "env": {
          "PASSKEEP_PASSWORD": "your-master-password"
        }
      }
    }
  }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(&mcp.ServerOptions{Config: cfg})
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			<-sigChan
			cancel()
			server.Close()
		}()

		if err := server.Run(ctx); err != nil {
			// Context cancellation is a clean shutdown, not an error.
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
