// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitorsmc/analise-solo-app/internal/soil/sources"
	"github.com/vitorsmc/analise-solo-app/internal/tool"
)

// version is set at build time.
var version = "dev"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extract_soil_report tool over MCP stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := cfg.NewEngine(logger)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "soilreport", Version: version}, nil)
	tool.NewReportTool(sources.DefaultRegistry(), engine, cfg.Catalog(), logger).Register(server)

	logger.Info("serving MCP over stdio", zap.String("config", cfg.Name()))
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}
