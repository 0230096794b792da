// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/mcpserver"
)

// newMCPCmd creates the "mcp" command.
func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP stdio server",
		Long:  "MCP serves the scan_repository and get_scan_report tools over stdin/stdout for agent runtimes.",
		RunE:  runMCP,
	}

	cmd.Flags().String("database-url", "", "Postgres URL for the attempt store (optional)")
	viper.BindPFlag("database-url", cmd.Flags().Lookup("database-url"))

	return cmd
}

// runMCP starts the stdio server and blocks until the client disconnects.
func runMCP(cmd *cobra.Command, args []string) error {
	// Stdout carries the MCP protocol, so logs go to stderr only.
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	deps, err := buildServerDeps(context.Background(), logger)
	if err != nil {
		return err
	}
	defer deps.closer()

	srv := mcpserver.NewServer(deps.pipeline, deps.attempts, logger)
	return srv.ServeStdio()
}
