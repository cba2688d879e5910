package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgefit-labs/discovery/internal/adapters/driven/library"
	"github.com/forgefit-labs/discovery/internal/adapters/driving/mcp"
	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

While serving, the library directory (when configured) is watched and
re-indexed on change.

Examples:
  # Stdio mode (default, for Claude Desktop)
  discovery mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  discovery mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Discovery: discovery,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if cfg.LibraryDir != "" {
		watcher, err := watchLibrary(cmd)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// watchLibrary re-indexes the engine whenever the library directory changes.
func watchLibrary(cmd *cobra.Command) (*library.Watcher, error) {
	ctx := cmd.Context()
	return library.NewWatcher(cfg.LibraryDir, library.DefaultDebounce, func() {
		docs, err := library.Load(cfg.LibraryDir)
		if err != nil {
			logger.Warn("Library reload failed: %v", err)
			return
		}
		if err := discovery.SetDocuments(ctx, docs); err != nil && !errors.Is(err, domain.ErrSuperseded) {
			logger.Warn("Re-indexing after library change failed: %v", err)
		}
	})
}
