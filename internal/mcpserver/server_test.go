// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrysKoum/skillguard-directory/internal/audit"
	"github.com/ChrysKoum/skillguard-directory/internal/pipeline"
	"github.com/ChrysKoum/skillguard-directory/internal/store"
	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

type stubFetcher struct{}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (*types.FileSet, error) {
	return &types.FileSet{
		Owner:    "octocat",
		Repo:     "skill",
		Files:    []types.RepoFile{{Path: "index.js", Content: "module.exports = {}"}},
		FileTree: []string{"index.js"},
	}, nil
}

type stubAuditor struct{}

func (a *stubAuditor) Audit(_ context.Context, _ *types.SmartScanPack, _ *types.StaticScanResult, _ audit.ProgressFunc) (*types.DeepAuditResult, error) {
	return &types.DeepAuditResult{
		RiskLevel:         types.RiskLow,
		Summary:           "Clean.",
		SuggestedCategory: "Productivity",
	}, nil
}

func newTestServer() (*Server, *store.Memory) {
	attempts := store.NewMemory()
	p := pipeline.New(pipeline.Deps{
		Fetcher: &stubFetcher{},
		Auditor: &stubAuditor{},
		Sink:    attempts,
	})
	return NewServer(p, attempts, nil), attempts
}

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestScanRepositoryTool_Definition(t *testing.T) {
	tool := scanRepositoryTool()

	assert.Equal(t, "scan_repository", tool.Name)
	assert.NotEmpty(t, tool.Description)
}

func TestHandleScanRepository(t *testing.T) {
	srv, _ := newTestServer()

	result, err := srv.handleScanRepository(context.Background(),
		callToolRequest("scan_repository", map[string]any{"url": "https://github.com/octocat/skill"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)

	text := result.Content[0].(mcp.TextContent).Text
	var report pipeline.Report
	require.NoError(t, json.Unmarshal([]byte(text), &report))

	assert.Equal(t, types.StatusDone, report.Status)
	assert.Equal(t, 100, report.SafetyScore)
	assert.Equal(t, types.TierObsidian, report.Tier)
}

func TestHandleScanRepository_MissingURL(t *testing.T) {
	srv, _ := newTestServer()

	result, err := srv.handleScanRepository(context.Background(),
		callToolRequest("scan_repository", map[string]any{}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
}

func TestHandleScanRepository_InvalidURL(t *testing.T) {
	srv, _ := newTestServer()

	result, err := srv.handleScanRepository(context.Background(),
		callToolRequest("scan_repository", map[string]any{"url": "not a url"}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
}

func TestHandleGetScanReport(t *testing.T) {
	srv, attempts := newTestServer()

	scan, err := srv.handleScanRepository(context.Background(),
		callToolRequest("scan_repository", map[string]any{"url": "https://github.com/octocat/skill"}))
	require.NoError(t, err)
	require.False(t, scan.IsError)

	var report pipeline.Report
	require.NoError(t, json.Unmarshal([]byte(scan.Content[0].(mcp.TextContent).Text), &report))

	// The attempt recorded by the scan is retrievable by ID.
	stored, err := attempts.GetAttempt(context.Background(), report.AttemptID)
	require.NoError(t, err)

	result, err := srv.handleGetScanReport(context.Background(),
		callToolRequest("get_scan_report", map[string]any{"attempt_id": stored.ID}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].(mcp.TextContent).Text, stored.ID)
}

func TestHandleGetScanReport_Unknown(t *testing.T) {
	srv, _ := newTestServer()

	result, err := srv.handleGetScanReport(context.Background(),
		callToolRequest("get_scan_report", map[string]any{"attempt_id": "missing"}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(mcp.TextContent).Text, "unknown scan attempt")
}
