// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package skillguard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/audit"
	"github.com/ChrysKoum/skillguard-directory/internal/fetch"
	"github.com/ChrysKoum/skillguard-directory/internal/pack"
	"github.com/ChrysKoum/skillguard-directory/internal/pipeline"
	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// New validates the config, initializes the fetcher and LLM client, and
// returns a ready-to-use Scanner.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Scanner, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := audit.NewBedrockClient(ctx, audit.ClientConfig{Region: cfg.Region})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	fetcher := fetch.NewClient(fetch.Config{
		GitHubToken: cfg.GitHubToken,
		Logger:      logger,
	})

	auditor := audit.New(client, audit.Config{
		Models: cfg.Models,
		Logger: logger,
	})

	p := pipeline.New(pipeline.Deps{
		Fetcher: fetcher,
		Auditor: auditor,
		PackCfg: pack.Config{
			TokenBudget:   cfg.TokenBudget,
			MaxFiles:      cfg.MaxPackFiles,
			OverflowRatio: cfg.OverflowRatio,
		},
		Logger: logger,
	})

	return &scannerAdapter{pipeline: p}, nil
}

// scannerAdapter adapts internal/pipeline to the public Scanner interface.
type scannerAdapter struct {
	pipeline *pipeline.Pipeline
}

func (a *scannerAdapter) Scan(ctx context.Context, url string, progress ProgressFunc) (*Report, error) {
	attemptID := uuid.NewString()

	var observe pipeline.Observer
	if progress != nil {
		observe = func(_ types.Status, p types.Progress) { progress(p) }
	}

	report, err := a.pipeline.Run(ctx, attemptID, url, observe)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	return &Report{
		AttemptID:   report.AttemptID,
		Owner:       report.Owner,
		Repo:        report.Repo,
		Status:      report.Status,
		Static:      report.Static,
		Audit:       report.Audit,
		SafetyScore: report.SafetyScore,
		Tier:        report.Tier,
		RiskLevel:   report.RiskLevel,
		Badge:       report.Badge,
		Category:    report.Category,
		Warnings:    report.Warnings,
	}, nil
}
