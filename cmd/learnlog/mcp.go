package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/learnlog/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the learnlog MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes logging entries, listing and editing them,
month statistics, missed days and backups as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\learnlog\learnlog.db
- macOS: ~/Library/Application Support/learnlog/learnlog.db
- Linux: $XDG_DATA_HOME/learnlog/learnlog.db or ~/.local/share/learnlog/learnlog.db

Example (Server Mode):
  learnlog mcp
  learnlog mcp --db learnlog.db --wal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewLearnlogMCPServer(mcp.Options{
			DBPath:    cfg.DBPath,
			WAL:       cfg.WAL,
			Sync:      cfg.Sync,
			BackupDir: cfg.BackupDir,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		tools := srv.RegisterAllTools()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		logger.Info().Str("db", srv.DbPath).Bool("wal", cfg.WAL).Str("sync", cfg.Sync).Msg("learnlog MCP server started")
		fmt.Fprintf(os.Stderr, "Available tools: %s\n", strings.Join(tools, ", "))
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}
