// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package mcpserver exposes the scan pipeline as Model Context Protocol
// tools so IDEs and agent runtimes can request audits directly.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/fetch"
	"github.com/ChrysKoum/skillguard-directory/internal/httpapi"
	"github.com/ChrysKoum/skillguard-directory/internal/pipeline"
	"github.com/ChrysKoum/skillguard-directory/internal/store"
)

const (
	serverName    = "skillguard-mcp"
	serverVersion = "1.0.0"
)

// Server wraps the pipeline behind an MCP stdio server.
type Server struct {
	mcpServer *server.MCPServer
	pipeline  *pipeline.Pipeline
	store     httpapi.AttemptStore
	log       *zap.Logger
}

// NewServer builds the MCP server and registers its tools.
func NewServer(p *pipeline.Pipeline, attempts httpapi.AttemptStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer: mcpServer,
		pipeline:  p,
		store:     attempts,
		log:       logger,
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(scanRepositoryTool(), s.handleScanRepository)
	s.mcpServer.AddTool(getScanReportTool(), s.handleGetScanReport)
}

func scanRepositoryTool() mcp.Tool {
	return mcp.NewTool("scan_repository",
		mcp.WithDescription("Run a full security audit of a skill repository: "+
			"static scan, token-budgeted deep LLM audit, safety score and tier."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Public GitHub repository URL (e.g. https://github.com/owner/repo)."),
		),
	)
}

func (s *Server) handleScanRepository(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	url, ok := args["url"].(string)
	if !ok || url == "" {
		return toolError("url parameter is required"), nil
	}

	ref, err := fetch.ParseRepoURL(url)
	if err != nil {
		return toolError(err.Error()), nil
	}

	attemptID, err := s.store.CreateAttempt(ctx, ref.Slug(), url)
	if err != nil {
		return toolError(fmt.Sprintf("creating attempt: %v", err)), nil
	}

	report, err := s.pipeline.Run(ctx, attemptID, url, nil)
	if err != nil {
		if merr := s.store.MarkError(ctx, attemptID, err.Error()); merr != nil {
			s.log.Warn("marking attempt failed", zap.Error(merr))
		}
		return toolError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	if err := s.store.SaveReport(ctx, attemptID, report.Status, report); err != nil {
		s.log.Warn("saving report failed", zap.Error(err))
	}

	return toolJSON(report)
}

func getScanReportTool() mcp.Tool {
	return mcp.NewTool("get_scan_report",
		mcp.WithDescription("Get the status and results of a security scan by attempt ID."),
		mcp.WithString("attempt_id",
			mcp.Required(),
			mcp.Description("The attempt UUID returned by scan_repository."),
		),
	)
}

func (s *Server) handleGetScanReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, ok := args["attempt_id"].(string)
	if !ok || id == "" {
		return toolError("attempt_id parameter is required"), nil
	}

	attempt, err := s.store.GetAttempt(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return toolError("unknown scan attempt"), nil
		}
		return toolError(fmt.Sprintf("loading attempt: %v", err)), nil
	}

	return toolJSON(attempt)
}

func toolJSON(payload any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(out)}},
	}, nil
}

func toolError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: message}},
		IsError: true,
	}
}
