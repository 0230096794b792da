// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package audit sends the smart pack and static findings to an LLM and
// returns a schema-validated structured security report. An ordered chain
// of candidate models is tried in sequence: rate limits are retried on the
// same model with backoff, hard failures and schema violations move to the
// next model, and total exhaustion yields a well-formed sentinel result so
// the pipeline can still surface static-only findings.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

const (
	// SentinelTitle names the synthetic finding produced when every model
	// failed. The pipeline treats it specially and never scores it as a
	// genuine confirmed vulnerability.
	SentinelTitle = "Audit Unavailable"

	// UncategorizedCategory is the category attached to sentinel results.
	UncategorizedCategory = "Uncategorized"

	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
)

// DefaultModels is the default fallback chain, strongest model first.
var DefaultModels = []string{
	"anthropic.claude-sonnet-4-20250514-v1:0",
	"anthropic.claude-3-5-haiku-20241022-v1:0",
}

// ProgressFunc receives streaming progress ticks. For a single attempt
// the findings count is monotonically non-decreasing across calls.
type ProgressFunc func(types.Progress)

// Config configures the auditor.
type Config struct {
	Models     []string      // Ordered fallback chain (default DefaultModels)
	MaxRetries int           // Rate-limit retries per model (default 3)
	BaseDelay  time.Duration // Backoff base; delay = base * attempt (default 1s)
	Logger     *zap.Logger
}

// Auditor drives the deep audit against a Generator.
type Auditor struct {
	gen        Generator
	models     []string
	maxRetries int
	baseDelay  time.Duration
	log        *zap.Logger
}

// New builds an Auditor over the given Generator.
func New(gen Generator, cfg Config) *Auditor {
	models := cfg.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := cfg.BaseDelay
	if baseDelay == 0 {
		baseDelay = defaultBaseDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{
		gen:        gen,
		models:     models,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		log:        logger,
	}
}

// Audit runs the deep audit. When progress is non-nil the response is
// streamed and completed finding objects are reported as they become
// parseable. On context cancellation the error is returned so a partial
// result never escapes; on total model exhaustion the sentinel result is
// returned with a nil error.
func (a *Auditor) Audit(ctx context.Context, pack *types.SmartScanPack, staticResult *types.StaticScanResult, progress ProgressFunc) (*types.DeepAuditResult, error) {
	prompt := BuildPrompt(pack, staticResult)

	if progress != nil {
		progress(types.Progress{Stage: types.StageDeepAudit, Message: "Starting deep audit..."})
	}

	// The findings-count high-water mark spans the whole attempt, across
	// every model in the chain. A model that streams findings and then
	// fails must not let its successor re-report lower counts.
	highWater := 0

	for _, model := range a.models {
		result, err := a.tryModel(ctx, model, prompt, progress, &highWater)
		if err == nil {
			if progress != nil {
				n := len(result.Findings)
				if n < highWater {
					n = highWater
				}
				progress(types.Progress{
					Stage:    types.StageDeepAudit,
					Message:  fmt.Sprintf("Deep audit complete: found %d issues", n),
					Findings: n,
				})
			}
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelFailure, ctx.Err())
		}
		a.log.Warn("model attempt failed, falling back",
			zap.String("model", model), zap.Error(err))
	}

	a.log.Error("all audit models exhausted, returning sentinel")
	return SentinelResult(), nil
}

// tryModel runs one model through the retry policy: rate limits back off
// and retry, schema violations and hard failures abandon the model
// immediately.
func (a *Auditor) tryModel(ctx context.Context, model, prompt string, progress ProgressFunc, highWater *int) (*types.DeepAuditResult, error) {
	var onDelta func(string)
	var counter *findingCounter
	if progress != nil {
		counter = &findingCounter{}
		onDelta = func(chunk string) {
			if n := counter.Feed(chunk); n > *highWater {
				*highWater = n
				progress(types.Progress{
					Stage:    types.StageDeepAudit,
					Message:  fmt.Sprintf("Identified %d issues so far...", n),
					Findings: n,
				})
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		if counter != nil && attempt > 1 {
			// Fresh counter per attempt; the attempt-wide high-water mark
			// stays, keeping progress monotonic across retries.
			*counter = findingCounter{}
		}

		text, usage, err := a.gen.Generate(ctx, model, systemPrompt, prompt, onDelta)
		if err == nil {
			result, perr := parseResult(text)
			if perr != nil {
				return nil, perr
			}
			result.ModelUsed = model
			result.TokenUsage = &usage
			if result.SuggestedCategory == "" {
				result.SuggestedCategory = UncategorizedCategory
			}
			return result, nil
		}

		lastErr = err
		if !isRateLimit(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == a.maxRetries {
			break
		}

		delay := a.baseDelay * time.Duration(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: cancelled during backoff: %v", ErrModelFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: rate limited after %d attempts: %v", ErrModelFailure, a.maxRetries, lastErr)
}

func isRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// SentinelResult is the well-formed total-failure result: high risk, a
// single medium-severity placeholder finding, empty structured sub-fields.
func SentinelResult() *types.DeepAuditResult {
	return &types.DeepAuditResult{
		RiskLevel: types.RiskHigh,
		Summary:   "Deep audit unavailable: all candidate models failed. Static analysis results remain valid; treat with caution and rescan.",
		Findings: []types.AuditFinding{{
			Title:          SentinelTitle,
			Severity:       types.SeverityMedium,
			WhyItMatters:   "The LLM audit stage could not be completed, so findings beyond static analysis are unknown.",
			Evidence:       []types.Evidence{},
			RecommendedFix: "Rescan once the audit service is available.",
		}},
		AttackChain:       []string{},
		SafeRunChecklist:  []string{"Do not run until a full scan completes."},
		SuggestedCategory: UncategorizedCategory,
		PolicySuggestions: types.PolicySuggestions{
			AllowDomains:     []string{},
			DenyPaths:        []string{},
			ToolRestrictions: []string{},
		},
		VerificationPlan: types.VerificationPlan{
			PreflightChecks: []string{},
			RuntimeChecks:   []string{},
			PostrunChecks:   []string{},
		},
	}
}

// IsSentinel reports whether the result is the total-failure placeholder.
func IsSentinel(result *types.DeepAuditResult) bool {
	return result != nil && len(result.Findings) == 1 && result.Findings[0].Title == SentinelTitle
}
