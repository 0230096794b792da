// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package static implements the deterministic first analysis stage: a pure
// function over a fetched file set that detects capabilities, sensitive
// paths, high-risk content patterns and prompt-injection evidence, and
// reduces them into a bounded 0-100 static risk score.
package static

import (
	"fmt"
	"strings"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

const (
	injectionPenalty     = 25
	sensitivePathPenalty = 10
	maxOutboundDomains   = 50
	maxStaticScore       = 100
)

// Scan analyzes the file set and produces a static scan result. It is a
// pure function: no network, no randomness, and byte-identical output for
// identical input.
func Scan(pack *types.FileSet) *types.StaticScanResult {
	capSeen := make(map[string]bool)
	var capabilities []string
	domainSeen := make(map[string]bool)
	var domains []string
	var flags []types.RiskFlag
	var injectionEvidence []string
	score := 0

	for _, file := range pack.Files {
		for _, rule := range capabilityRules {
			if !capSeen[rule.Name] && rule.Pattern.MatchString(file.Content) {
				capSeen[rule.Name] = true
				capabilities = append(capabilities, rule.Name)
			}
		}

		for _, rule := range riskRules {
			if rule.Pattern.MatchString(file.Content) {
				flags = append(flags, types.RiskFlag{
					Code:     rule.Code,
					Severity: rule.Severity,
					Evidence: rule.Message,
					File:     file.Path,
				})
				score += severityWeight[rule.Severity]
			}
		}

		if !isNoisePath(file.Path) {
			for _, rule := range injectionRules {
				if rule.Pattern.MatchString(file.Content) {
					injectionEvidence = append(injectionEvidence, fmt.Sprintf("%s: %s", file.Path, rule.Message))
					score += injectionPenalty
				}
			}
		}

		for _, url := range urlPattern.FindAllString(file.Content, -1) {
			host := hostname(url)
			if host == "" || domainSeen[host] {
				continue
			}
			if len(domains) >= maxOutboundDomains {
				continue
			}
			domainSeen[host] = true
			domains = append(domains, host)
		}
	}

	pathSeen := make(map[string]bool)
	var sensitivePaths []string
	for _, path := range pack.FileTree {
		for _, rule := range sensitivePathRules {
			if rule.MatchString(path) {
				if !pathSeen[path] {
					pathSeen[path] = true
					sensitivePaths = append(sensitivePaths, path)
				}
				score += sensitivePathPenalty
			}
		}
	}

	if score > maxStaticScore {
		score = maxStaticScore
	}

	return &types.StaticScanResult{
		Capabilities:        capabilities,
		SensitivePaths:      sensitivePaths,
		OutboundDomains:     domains,
		RiskFlags:           flags,
		StaticScore:         score,
		HasInjectionAttempt: len(injectionEvidence) > 0,
		InjectionEvidence:   injectionEvidence,
	}
}

// isNoisePath reports whether the path falls under the documentation/test
// allowlist that injection heuristics skip.
func isNoisePath(path string) bool {
	lower := strings.ToLower(path)
	for _, dir := range noiseDirs {
		if strings.Contains(path, dir) {
			return true
		}
	}
	if strings.HasSuffix(lower, "readme.md") {
		return true
	}
	for _, suffix := range noiseSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// hostname strips the scheme from a matched URL literal, leaving the host.
func hostname(url string) string {
	rest := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if i := strings.IndexAny(rest, "/:?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
