package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vield/calculadora/internal/logger"
	"github.com/vield/calculadora/internal/mcpserver"
	"github.com/vield/calculadora/internal/wizard"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the calculator as MCP tools",
	Long: `Serve the calculator over the Model Context Protocol (streamable HTTP)
so an agent can fill in a quote request. Progress is shared with the
calculator through the configured store.

The port comes from mcp_port (0 picks a free port). Stop with Ctrl+C.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	srv := mcpserver.New(wizard.Open(ctx, b.persistence(), b.intake))
	if _, err := srv.Start(ctx, cfg.MCPPort); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Warn("Stopping MCP server: %v", err)
		}
	}()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())
	<-ctx.Done()
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	return nil
}
