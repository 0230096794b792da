// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the public data model shared by the scan pipeline:
// repository file sets, static scan results, deep audit results, safety
// scores and tiers.
package types

// Severity classifies a risk flag or audit finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// RiskLevel is the deep auditor's overall assessment of a skill.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Tier is one of eight ordered safety bands derived from the safety score.
// Ordering is paper < iron < bronze < silver < gold < platinum < diamond
// < obsidian.
type Tier string

const (
	TierPaper    Tier = "paper"
	TierIron     Tier = "iron"
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
	TierObsidian Tier = "obsidian"
)

// tierRank maps each tier to its position in the ordering, lowest first.
var tierRank = map[Tier]int{
	TierPaper:    0,
	TierIron:     1,
	TierBronze:   2,
	TierSilver:   3,
	TierGold:     4,
	TierPlatinum: 5,
	TierDiamond:  6,
	TierObsidian: 7,
}

// Rank returns the tier's position in the eight-level ordering, 0 for
// paper through 7 for obsidian. Unknown tiers rank below paper.
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return -1
}

// Badge is the directory-level verification badge derived from a completed
// scan.
type Badge string

const (
	BadgeNone   Badge = "none"
	BadgeBronze Badge = "bronze"
	BadgeSilver Badge = "silver"
	BadgePinned Badge = "pinned"
)
