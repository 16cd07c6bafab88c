package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/scholarmind/scholarmind/internal/mcp"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve search and recommendations to AI agents over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: ` + strings.Join(mcp.ToolNames, ", ") + `.

Saved papers are kept in memory only and are gone when the server exits.
list_saved and toggle_saved report the session id so clients can tell
server processes apart.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	engine := mustLoadEngine(repoRoot, newProvider(cfg))

	server, err := mcp.NewServer(engine, Version, mcp.WithLimits(cfg.SearchLimit, cfg.RecommendLimit))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return server.Serve(ctx)
}
