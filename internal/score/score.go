// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package score reduces audit findings and static risk flags into a single
// 0-100 safety score (100 = safest) and an eight-tier classification. All
// functions are pure and deterministic; the score is always recomputable
// from its inputs and never stored independently of them.
package score

import "github.com/ChrysKoum/skillguard-directory/pkg/types"

// findingDeduction is the per-severity score deduction for a confirmed LLM
// finding.
var findingDeduction = map[types.Severity]int{
	types.SeverityCritical: 40,
	types.SeverityHigh:     20,
	types.SeverityMedium:   10,
	types.SeverityLow:      5,
}

// flagDeduction weights static flags lower than findings: they are
// pattern-based corroborating signal and may be false positives.
var flagDeduction = map[types.Severity]int{
	types.SeverityCritical: 15,
	types.SeverityHigh:     8,
	types.SeverityMedium:   3,
	types.SeverityLow:      1,
}

// Safety computes the safety score from deep audit findings and static
// risk flags, clamped to [0, 100].
func Safety(findings []types.AuditFinding, flags []types.RiskFlag) int {
	score := 100
	for _, f := range findings {
		score -= findingDeduction[f.Severity]
	}
	for _, rf := range flags {
		score -= flagDeduction[rf.Severity]
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TierFor maps a safety score to its tier band. The partition is
// contiguous and non-overlapping: paper 0-19, iron 20-39, bronze 40-54,
// silver 55-69, gold 70-84, platinum 85-94, diamond 95-99, obsidian 100.
func TierFor(score int) types.Tier {
	switch {
	case score >= 100:
		return types.TierObsidian
	case score >= 95:
		return types.TierDiamond
	case score >= 85:
		return types.TierPlatinum
	case score >= 70:
		return types.TierGold
	case score >= 55:
		return types.TierSilver
	case score >= 40:
		return types.TierBronze
	case score >= 20:
		return types.TierIron
	default:
		return types.TierPaper
	}
}

// RiskLevelFor derives the coarse risk level from a safety score.
func RiskLevelFor(score int) types.RiskLevel {
	switch {
	case score >= 70:
		return types.RiskLow
	case score >= 40:
		return types.RiskMedium
	default:
		return types.RiskHigh
	}
}

// TierDescription returns the directory-facing description of a tier.
func TierDescription(tier types.Tier) string {
	switch tier {
	case types.TierObsidian:
		return "Pinnacle of security. Passes all strict checks with zero critical issues."
	case types.TierDiamond:
		return "Exceptional security posture. Near-perfect score with minimal risks."
	case types.TierPlatinum:
		return "Superior security. Follows best practices with no high-risk findings."
	case types.TierGold:
		return "Strong security. Solid implementation but may have minor warnings."
	case types.TierSilver:
		return "Standard security. Functional but requires review of medium risks."
	case types.TierBronze:
		return "Basic security. Contains risks that should be addressed before production."
	case types.TierIron:
		return "Weak security. Significant vulnerabilities detected."
	case types.TierPaper:
		return "Insecure. Do not use without major refactoring."
	default:
		return "Unknown security tier."
	}
}
