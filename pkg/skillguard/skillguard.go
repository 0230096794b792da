// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package skillguard defines the public interface for the SkillGuard scan
// pipeline: fetch a skill repository, statically scan it, select a
// token-budgeted smart pack, deep-audit it with an LLM, and reduce the
// findings to a safety score and tier.
package skillguard

import (
	"context"
	"errors"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// Error types for the public API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrScanFailed    = errors.New("scan failed")
)

// ProgressFunc receives stage and streaming progress ticks during a scan.
type ProgressFunc func(types.Progress)

// Config configures a Scanner instance.
type Config struct {
	Region        string   // AWS region for the LLM auditor (required)
	Models        []string // Ordered model fallback chain (default audit.DefaultModels)
	GitHubToken   string   // Optional token for default-branch resolution
	TokenBudget   int      // Smart pack token budget (default 120000)
	MaxPackFiles  int      // Smart pack file cap (default 60)
	OverflowRatio float64  // Budget overflow allowance for critical files (default 0.10, negative disables)
}

// Report is the public outcome of one scan attempt.
type Report struct {
	AttemptID   string                  `json:"attempt_id"`
	Owner       string                  `json:"owner"`
	Repo        string                  `json:"repo"`
	Status      types.Status            `json:"status"`
	Static      *types.StaticScanResult `json:"static"`
	Audit       *types.DeepAuditResult  `json:"audit"`
	SafetyScore int                     `json:"safety_score"`
	Tier        types.Tier              `json:"tier"`
	RiskLevel   types.RiskLevel         `json:"risk_level"`
	Badge       types.Badge             `json:"badge"`
	Category    string                  `json:"category"`
	Warnings    []string                `json:"warnings"`
}

// Scanner audits a skill repository end to end.
type Scanner interface {
	// Scan runs the full pipeline for the repository at url. The progress
	// callback is optional; when set, findings counts reported through it
	// are monotonically non-decreasing within the attempt.
	Scan(ctx context.Context, url string, progress ProgressFunc) (*Report, error)
}
