// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package artifacts derives the two human/machine-readable documents from
// a completed deep audit: a policy JSON for runtime enforcement and a
// verification-plan markdown. Rendering is pure formatting; persistence
// goes through an ArtifactStore.
package artifacts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// PolicyDocument is the enforcement-oriented reshaping of the auditor's
// policy suggestions. All three policy sections are always present, even
// when empty.
type PolicyDocument struct {
	Meta   PolicyMeta `json:"meta"`
	Policy Policy     `json:"policy"`
}

type PolicyMeta struct {
	GeneratedBy string          `json:"generated_by"`
	ScanID      string          `json:"scan_id"`
	Timestamp   time.Time       `json:"timestamp"`
	RiskLevel   types.RiskLevel `json:"risk_level"`
}

type Policy struct {
	Network    NetworkPolicy    `json:"network"`
	Filesystem FilesystemPolicy `json:"filesystem"`
	Execution  ExecutionPolicy  `json:"execution"`
}

type NetworkPolicy struct {
	AllowedDomains []string `json:"allowed_domains"`
}

type FilesystemPolicy struct {
	DeniedPaths []string `json:"denied_paths"`
}

type ExecutionPolicy struct {
	Restrictions []string `json:"restrictions"`
}

// RenderPolicy produces the policy JSON for a completed audit.
func RenderPolicy(scanID string, result *types.DeepAuditResult, now time.Time) ([]byte, error) {
	doc := PolicyDocument{
		Meta: PolicyMeta{
			GeneratedBy: "SkillGuard",
			ScanID:      scanID,
			Timestamp:   now.UTC(),
			RiskLevel:   result.RiskLevel,
		},
		Policy: Policy{
			Network:    NetworkPolicy{AllowedDomains: orEmpty(result.PolicySuggestions.AllowDomains)},
			Filesystem: FilesystemPolicy{DeniedPaths: orEmpty(result.PolicySuggestions.DenyPaths)},
			Execution:  ExecutionPolicy{Restrictions: orEmpty(result.PolicySuggestions.ToolRestrictions)},
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// RenderVerificationPlan produces the checklist-style markdown narrative.
// All three checklist sections and the summary are always present.
func RenderVerificationPlan(scanID string, result *types.DeepAuditResult) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# Verification Plan for Skill Candidate\n\n")
	fmt.Fprintf(&buf, "**Scan ID**: `%s`\n", scanID)
	fmt.Fprintf(&buf, "**Risk Level**: %s\n\n", strings.ToUpper(string(result.RiskLevel)))

	buf.WriteString("## 1. Preflight Checks\nBefore running the agent, verify:\n")
	writeChecklist(&buf, result.VerificationPlan.PreflightChecks)

	buf.WriteString("\n## 2. Runtime Verification\nWhile the agent is running, observe:\n")
	writeChecklist(&buf, result.VerificationPlan.RuntimeChecks)

	buf.WriteString("\n## 3. Post-Run Audit\nAfter execution, check:\n")
	writeChecklist(&buf, result.VerificationPlan.PostrunChecks)

	buf.WriteString("\n## Security Summary\n")
	buf.WriteString(result.Summary)
	buf.WriteString("\n")

	return buf.String()
}

func writeChecklist(buf *strings.Builder, items []string) {
	if len(items) == 0 {
		buf.WriteString("- [ ] (none suggested)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(buf, "- [ ] %s\n", item)
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
