// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pack builds the token-budgeted "smart pack": the subset of a
// repository's files selected for LLM review. Files are ranked by a
// heuristic value score, boosted by static findings, then admitted
// greedily under a fixed token budget and file-count cap.
package pack

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

const (
	// TruncationMarker is appended to any file cut at the per-file cap.
	TruncationMarker = "\n...[TRUNCATED BY SKILLGUARD]..."

	defaultTokenBudget   = 120_000
	charsPerToken        = 4
	defaultMaxFiles      = 60
	maxFileChars         = 40_000
	riskPreviewChars     = 2000
	baseScore            = 10
	highValueBonus       = 20
	riskIndicatorBonus   = 10
	staticFlagBoost      = 50
	testPathPenalty      = 5
	markdownPenalty      = 5
	largeJSONPenalty     = 15
	largeJSONThreshold   = 20_000
	defaultOverflowRatio = 0.10
	defaultCriticalScore = 80
)

// highValuePatterns match paths worth auditing regardless of content:
// dependency manifests, container and CI files, entry points,
// security-relevant directories and documentation of intent.
var highValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`package\.json$`),
	regexp.MustCompile(`requirements\.txt$`),
	regexp.MustCompile(`pyproject\.toml$`),
	regexp.MustCompile(`Cargo\.toml$`),
	regexp.MustCompile(`go\.mod$`),
	regexp.MustCompile(`Dockerfile$`),
	regexp.MustCompile(`docker-compose`),
	regexp.MustCompile(`main\.`),
	regexp.MustCompile(`index\.`),
	regexp.MustCompile(`app\.`),
	regexp.MustCompile(`server\.`),
	regexp.MustCompile(`README`),
	regexp.MustCompile(`SECURITY\.md`),
	regexp.MustCompile(`SKILL\.md`),
	regexp.MustCompile(`\.github/workflows`),
	regexp.MustCompile(`auth`),
	regexp.MustCompile(`security`),
	regexp.MustCompile(`login`),
	regexp.MustCompile(`api`),
	regexp.MustCompile(`\.env\.example`),
}

// riskIndicatorPatterns are checked against only the first 2000 characters
// of content; they promote files that look execution-, network- or
// credential-adjacent.
var riskIndicatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`exec\(`),
	regexp.MustCompile(`eval\(`),
	regexp.MustCompile(`subprocess`),
	regexp.MustCompile(`child_process`),
	regexp.MustCompile(`curl `),
	regexp.MustCompile(`wget `),
	regexp.MustCompile(`bash `),
	regexp.MustCompile(`sh `),
	regexp.MustCompile(`fs\.read`),
	regexp.MustCompile(`fs\.write`),
	regexp.MustCompile(`open\(`),
	regexp.MustCompile(`key`),
	regexp.MustCompile(`secret`),
	regexp.MustCompile(`token`),
	regexp.MustCompile(`password`),
}

// Config carries the selection policy knobs. The overflow ratio and
// critical-score admission threshold are tunable policy, not derived
// invariants; a negative value pins either knob to zero, which for the
// ratio disables budget overflow entirely.
type Config struct {
	TokenBudget   int     // Maximum estimated tokens (default 120000)
	MaxFiles      int     // Maximum number of files (default 60)
	OverflowRatio float64 // Budget overflow allowance for critical files (default 0.10, negative disables)
	CriticalScore int     // Score above which a file may overflow the budget (default 80, negative means any score)
}

func (c *Config) applyDefaults() {
	if c.TokenBudget == 0 {
		c.TokenBudget = defaultTokenBudget
	}
	if c.MaxFiles == 0 {
		c.MaxFiles = defaultMaxFiles
	}
	switch {
	case c.OverflowRatio < 0:
		c.OverflowRatio = 0
	case c.OverflowRatio == 0:
		c.OverflowRatio = defaultOverflowRatio
	}
	switch {
	case c.CriticalScore < 0:
		c.CriticalScore = 0
	case c.CriticalScore == 0:
		c.CriticalScore = defaultCriticalScore
	}
}

// Build ranks the file set and assembles a smart pack under the budget.
// staticResult may be nil; when present, files it flagged receive a large
// score boost so risk-confirmed files are prioritized for LLM review.
func Build(full *types.FileSet, staticResult *types.StaticScanResult, cfg Config) *types.SmartScanPack {
	cfg.applyDefaults()

	metadata := make([]types.FileMetadata, 0, len(full.Files))
	contentByPath := make(map[string]string, len(full.Files))
	for _, f := range full.Files {
		metadata = append(metadata, scoreFile(f))
		contentByPath[f.Path] = f.Content
	}

	if staticResult != nil {
		flagged := make(map[string]bool, len(staticResult.RiskFlags))
		for _, rf := range staticResult.RiskFlags {
			flagged[rf.File] = true
		}
		for i := range metadata {
			if flagged[metadata[i].Path] {
				metadata[i].Score += staticFlagBoost
			}
		}
	}

	// Stable sort keeps equal-score files in file-set order so selection
	// is reproducible.
	sort.SliceStable(metadata, func(i, j int) bool {
		return metadata[i].Score > metadata[j].Score
	})

	var selected []types.RepoFile
	var truncated []string
	var warnings []string
	currentTokens := 0
	overflowCap := int(float64(cfg.TokenBudget) * (1 + cfg.OverflowRatio))

	for _, meta := range metadata {
		if len(selected) >= cfg.MaxFiles {
			break
		}

		content := contentByPath[meta.Path]
		if len(content) > maxFileChars {
			content = content[:maxFileChars] + TruncationMarker
			truncated = append(truncated, meta.Path)
		}
		fileTokens := estimateTokens(content)

		if currentTokens+fileTokens > cfg.TokenBudget {
			// Past the nominal budget only critical files within the
			// overflow allowance are still admitted.
			if meta.Score <= cfg.CriticalScore || currentTokens+fileTokens > overflowCap {
				continue
			}
		}

		selected = append(selected, types.RepoFile{Path: meta.Path, Content: content})
		currentTokens += fileTokens
	}

	if len(truncated) > 0 {
		warnings = append(warnings, fmt.Sprintf("Truncated %d large files to fit token budget.", len(truncated)))
	}
	if len(full.Files) > len(selected) {
		warnings = append(warnings, fmt.Sprintf("Analyzed top %d files out of %d for Deep Audit.", len(selected), len(full.Files)))
	}

	strategy := types.StrategySmart
	if len(selected) == len(full.Files) && len(truncated) == 0 {
		strategy = types.StrategyFull
	}

	return &types.SmartScanPack{
		FileSet: types.FileSet{
			Owner:    full.Owner,
			Repo:     full.Repo,
			Subpath:  full.Subpath,
			Files:    selected,
			FileTree: full.FileTree,
		},
		Strategy:       strategy,
		TotalTokens:    currentTokens,
		TruncatedFiles: truncated,
		Warnings:       warnings,
	}
}

// scoreFile computes the heuristic value score for one file.
func scoreFile(f types.RepoFile) types.FileMetadata {
	score := baseScore
	path := f.Path
	size := len(f.Content)

	for _, p := range highValuePatterns {
		if p.MatchString(path) {
			score += highValueBonus
		}
	}

	preview := f.Content
	if len(preview) > riskPreviewChars {
		preview = preview[:riskPreviewChars]
	}
	for _, p := range riskIndicatorPatterns {
		if p.MatchString(preview) {
			score += riskIndicatorBonus
		}
	}

	if strings.Contains(path, "test") || strings.Contains(path, "spec") {
		score -= testPathPenalty
	}
	if strings.HasSuffix(path, ".md") && !strings.Contains(path, "README") && !strings.Contains(path, "SKILL") {
		score -= markdownPenalty
	}
	if strings.HasSuffix(path, ".json") && size > largeJSONThreshold && !strings.Contains(path, "package") {
		score -= largeJSONPenalty
	}

	ext := ""
	if i := strings.LastIndex(path, "."); i >= 0 {
		ext = path[i+1:]
	}

	return types.FileMetadata{
		Path:      path,
		Extension: ext,
		Size:      size,
		Score:     score,
		Tokens:    estimateTokens(f.Content),
	}
}

// estimateTokens approximates token count at 4 characters per token,
// rounding up.
func estimateTokens(content string) int {
	return (len(content) + charsPerToken - 1) / charsPerToken
}
