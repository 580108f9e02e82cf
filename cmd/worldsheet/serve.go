package main

import (
	"context"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"worldsheet/internal/implication"
	"worldsheet/internal/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := loadProject(ctx, true)
	if err != nil {
		return err
	}
	defer p.Close(context.Background())

	server := mcp.NewServer(p.links(), implication.NewEngine(p.rules), p.db, version, p.logger)
	return server.Run(ctx, &sdk.StdioTransport{})
}
