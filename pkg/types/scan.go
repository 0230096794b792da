// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// RiskFlag is a static, pattern-matched indicator of dangerous code.
type RiskFlag struct {
	Code     string   `json:"code"`     // Stable rule identifier, e.g. "PIPE_BASH"
	Severity Severity `json:"severity"` // critical, high, medium or low
	Evidence string   `json:"evidence"` // Human-readable rule message
	File     string   `json:"file"`     // Path of the matching file
}

// StaticScanResult is the output of the deterministic static scanner.
// Immutable once produced; one per scan attempt.
type StaticScanResult struct {
	Capabilities        []string   `json:"capabilities"`
	SensitivePaths      []string   `json:"sensitive_paths"`
	OutboundDomains     []string   `json:"outbound_domains"` // Hostnames only, capped at 50
	RiskFlags           []RiskFlag `json:"risk_flags"`
	StaticScore         int        `json:"static_score"` // 0-100, higher = riskier
	HasInjectionAttempt bool       `json:"has_injection_attempt"`
	InjectionEvidence   []string   `json:"injection_evidence"`
}

// Evidence cites the file and snippet backing an audit finding.
type Evidence struct {
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// AuditFinding is an LLM-confirmed security issue with cited evidence.
type AuditFinding struct {
	Title          string     `json:"title"`
	Severity       Severity   `json:"severity"`
	WhyItMatters   string     `json:"why_it_matters"`
	Evidence       []Evidence `json:"evidence"`
	RecommendedFix string     `json:"recommended_fix"`
}

// PolicySuggestions are runtime-enforcement hints produced by the auditor.
type PolicySuggestions struct {
	AllowDomains     []string `json:"allow_domains"`
	DenyPaths        []string `json:"deny_paths"`
	ToolRestrictions []string `json:"tool_restrictions"`
}

// VerificationPlan is the three-phase checklist for safely testing a skill.
type VerificationPlan struct {
	PreflightChecks []string `json:"preflight_checks"`
	RuntimeChecks   []string `json:"runtime_checks"`
	PostrunChecks   []string `json:"postrun_checks"`
}

// TokenUsage records realized token consumption of a deep audit call.
type TokenUsage struct {
	Prompt   int `json:"prompt"`
	Response int `json:"response"`
	Total    int `json:"total"`
}

// DeepAuditResult is the structured output of the LLM deep audit.
// Produced at most once per scan attempt; immutable after production.
type DeepAuditResult struct {
	RiskLevel         RiskLevel         `json:"risk_level"`
	Summary           string            `json:"summary"`
	Findings          []AuditFinding    `json:"findings"`
	AttackChain       []string          `json:"attack_chain"`
	SafeRunChecklist  []string          `json:"safe_run_checklist"`
	SuggestedCategory string            `json:"suggested_category"`
	PolicySuggestions PolicySuggestions `json:"policy_suggestions"`
	VerificationPlan  VerificationPlan  `json:"verification_plan"`

	// Metadata attached by the auditor, not part of the response schema.
	ModelUsed  string      `json:"model_used,omitempty"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
}
