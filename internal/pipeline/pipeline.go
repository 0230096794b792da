// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline sequences the scan stages (fetch, static scan, smart
// pack, deep audit, scoring) and persists stage transitions through a
// status sink for external polling. The core computations stay in their
// own packages; this orchestrator ties their invariants together.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/artifacts"
	"github.com/ChrysKoum/skillguard-directory/internal/audit"
	"github.com/ChrysKoum/skillguard-directory/internal/pack"
	"github.com/ChrysKoum/skillguard-directory/internal/score"
	"github.com/ChrysKoum/skillguard-directory/internal/static"
	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// Fetcher resolves a repository URL to a file set.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*types.FileSet, error)
}

// Auditor runs the deep audit stage.
type Auditor interface {
	Audit(ctx context.Context, pack *types.SmartScanPack, staticResult *types.StaticScanResult, progress audit.ProgressFunc) (*types.DeepAuditResult, error)
}

// StatusSink receives stage transitions and progress ticks. A failed
// status write is a non-fatal observability failure: it is surfaced in
// logs but never aborts the scan.
type StatusSink interface {
	RecordStage(ctx context.Context, attemptID string, status types.Status, progress types.Progress) error
}

// Report is the complete outcome of one scan attempt.
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
	Artifacts   []string                `json:"artifacts,omitempty"`
}

// Deps holds the injected collaborators.
type Deps struct {
	Fetcher   Fetcher
	Auditor   Auditor
	Sink      StatusSink      // Optional
	Artifacts artifacts.Store // Optional
	PackCfg   pack.Config
	Logger    *zap.Logger
}

// Pipeline runs scan attempts.
type Pipeline struct {
	deps Deps
	log  *zap.Logger
}

// New builds a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, log: logger}
}

// Observer receives every stage transition and progress tick for one
// attempt, after deduplication. Optional.
type Observer func(types.Status, types.Progress)

// Run executes one scan attempt end to end. Stages run strictly in
// sequence; the only external I/O is the repository download and the LLM
// call, both bounded by ctx.
func (p *Pipeline) Run(ctx context.Context, attemptID, url string, observe Observer) (*Report, error) {
	// Duplicate status messages within this attempt are suppressed; the
	// guard is local so concurrent attempts never share it. Sink writes
	// use a context that survives cancellation so the terminal status of
	// a timed-out scan still reaches the store.
	var lastMessage string
	sinkCtx := context.WithoutCancel(ctx)
	record := func(status types.Status, progress types.Progress) {
		if progress.Message != "" && progress.Message == lastMessage {
			return
		}
		lastMessage = progress.Message
		if observe != nil {
			observe(status, progress)
		}
		if p.deps.Sink == nil {
			return
		}
		if err := p.deps.Sink.RecordStage(sinkCtx, attemptID, status, progress); err != nil {
			p.log.Warn("status write failed", zap.String("attempt", attemptID), zap.Error(err))
		}
	}

	record(types.StatusRunning, types.Progress{Stage: types.StageFetching, Message: "Fetching repository..."})
	fileSet, err := p.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		record(types.StatusError, types.Progress{Stage: types.StageFetching, Message: err.Error()})
		return nil, fmt.Errorf("fetch stage: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record(types.StatusRunning, types.Progress{Stage: types.StageStatic, Message: "Running static analysis..."})
	staticResult := static.Scan(fileSet)

	record(types.StatusRunning, types.Progress{Stage: types.StagePackBuilding, Message: "Selecting files for deep audit..."})
	smartPack := pack.Build(fileSet, staticResult, p.deps.PackCfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record(types.StatusRunning, types.Progress{Stage: types.StageDeepAudit, Message: "Running deep audit..."})
	auditResult, err := p.deps.Auditor.Audit(ctx, smartPack, staticResult, func(progress types.Progress) {
		record(types.StatusRunning, progress)
	})
	if err != nil {
		record(types.StatusError, types.Progress{Stage: types.StageDeepAudit, Message: err.Error()})
		return nil, fmt.Errorf("deep audit stage: %w", err)
	}

	report := p.assemble(attemptID, fileSet, staticResult, smartPack, auditResult)

	if p.deps.Artifacts != nil {
		created, err := artifacts.Generate(ctx, p.deps.Artifacts, attemptID, auditResult)
		report.Artifacts = created
		if err != nil {
			// Persistence failure does not invalidate computed results.
			p.log.Warn("artifact generation failed", zap.String("attempt", attemptID), zap.Error(err))
		}
	}

	record(report.Status, types.Progress{
		Stage:    types.StageDeepAudit,
		Message:  fmt.Sprintf("Scan complete: score %d, tier %s", report.SafetyScore, report.Tier),
		Findings: len(auditResult.Findings),
	})
	return report, nil
}

// assemble reduces the stage outputs into the final report. The sentinel
// finding is excluded from scoring: it marks audit unavailability, not a
// confirmed vulnerability.
func (p *Pipeline) assemble(attemptID string, fileSet *types.FileSet, staticResult *types.StaticScanResult, smartPack *types.SmartScanPack, auditResult *types.DeepAuditResult) *Report {
	status := types.StatusDone
	findings := auditResult.Findings
	if audit.IsSentinel(auditResult) {
		status = types.StatusDoneWithWarnings
		findings = nil
	}

	safety := score.Safety(findings, staticResult.RiskFlags)

	warnings := append([]string(nil), smartPack.Warnings...)
	if status == types.StatusDoneWithWarnings {
		warnings = append(warnings, "Deep audit unavailable; results are based on static analysis only.")
	}

	return &Report{
		AttemptID:   attemptID,
		Owner:       fileSet.Owner,
		Repo:        fileSet.Repo,
		Status:      status,
		Static:      staticResult,
		Audit:       auditResult,
		SafetyScore: safety,
		Tier:        score.TierFor(safety),
		RiskLevel:   auditResult.RiskLevel,
		Badge:       deriveBadge(auditResult.RiskLevel, staticResult.StaticScore),
		Category:    deriveCategory(auditResult),
		Warnings:    warnings,
	}
}

// deriveBadge maps the audit risk level and static score to a directory
// badge.
func deriveBadge(risk types.RiskLevel, staticScore int) types.Badge {
	switch {
	case risk == types.RiskLow && staticScore < 50:
		return types.BadgeSilver
	case risk == types.RiskMedium:
		return types.BadgeBronze
	default:
		return types.BadgeNone
	}
}

func deriveCategory(result *types.DeepAuditResult) string {
	if result.SuggestedCategory == "" {
		return audit.UncategorizedCategory
	}
	return result.SuggestedCategory
}
