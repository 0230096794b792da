// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package pack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

func TestBuild_SmallRepoIsFullStrategy(t *testing.T) {
	full := &types.FileSet{
		Owner: "octocat",
		Repo:  "weather-skill",
		Files: []types.RepoFile{
			{Path: "skill.js", Content: "module.exports = {}"},
			{Path: "SKILL.md", Content: "# Weather"},
		},
		FileTree: []string{"skill.js", "SKILL.md"},
	}

	result := Build(full, nil, Config{})

	assert.Equal(t, types.StrategyFull, result.Strategy)
	assert.Len(t, result.Files, 2)
	assert.Empty(t, result.TruncatedFiles)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "octocat", result.Owner)
	assert.Equal(t, full.FileTree, result.FileTree)
}

func TestBuild_RespectsFileCap(t *testing.T) {
	var files []types.RepoFile
	for i := 0; i < 80; i++ {
		files = append(files, types.RepoFile{
			Path:    "lib/mod" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + ".js",
			Content: "function f() { return 1; }",
		})
	}
	full := &types.FileSet{Files: files}

	result := Build(full, nil, Config{})

	assert.Len(t, result.Files, 60)
	assert.Equal(t, types.StrategySmart, result.Strategy)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "Analyzed top 60 files out of 80")
}

func TestBuild_RespectsTokenBudget(t *testing.T) {
	big := strings.Repeat("x", 4000) // 1000 tokens each
	var files []types.RepoFile
	for i := 0; i < 20; i++ {
		files = append(files, types.RepoFile{
			Path:    "data" + string(rune('a'+i)) + ".js",
			Content: big,
		})
	}
	full := &types.FileSet{Files: files}

	// Budget fits only five files; none are critical so the overflow
	// allowance never applies.
	result := Build(full, nil, Config{TokenBudget: 5000})

	assert.LessOrEqual(t, result.TotalTokens, 5000)
	assert.Len(t, result.Files, 5)
}

func TestBuild_TruncatesOversizedFiles(t *testing.T) {
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "huge.js", Content: strings.Repeat("a", 50_000)},
		},
	}

	result := Build(full, nil, Config{})

	require.Len(t, result.Files, 1)
	assert.True(t, strings.HasSuffix(result.Files[0].Content, TruncationMarker))
	assert.Equal(t, []string{"huge.js"}, result.TruncatedFiles)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "Truncated 1 large files")
	assert.Equal(t, types.StrategySmart, result.Strategy)
}

func TestBuild_FlaggedFilesSelectedFirst(t *testing.T) {
	filler := strings.Repeat("y", 4000)
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "aaa.js", Content: filler},
			{Path: "bbb.js", Content: filler},
			{Path: "evil.js", Content: filler},
		},
	}
	staticResult := &types.StaticScanResult{
		RiskFlags: []types.RiskFlag{
			{Code: "PIPE_BASH", Severity: types.SeverityCritical, File: "evil.js"},
		},
	}

	// Budget admits a single file; the flagged one must win.
	result := Build(full, staticResult, Config{TokenBudget: 1000})

	require.Len(t, result.Files, 1)
	assert.Equal(t, "evil.js", result.Files[0].Path)
}

func TestBuild_HighValuePathsOutrankPlainFiles(t *testing.T) {
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "notes.js", Content: "plain"},
			{Path: "package.json", Content: `{"name":"x"}`},
		},
	}

	result := Build(full, nil, Config{MaxFiles: 1})

	require.Len(t, result.Files, 1)
	assert.Equal(t, "package.json", result.Files[0].Path)
}

func TestBuild_TestFilesRankLast(t *testing.T) {
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "lib/core_test.js", Content: "plain"},
			{Path: "lib/core.js", Content: "plain"},
		},
	}

	result := Build(full, nil, Config{MaxFiles: 1})

	require.Len(t, result.Files, 1)
	assert.Equal(t, "lib/core.js", result.Files[0].Path)
}

func TestBuild_OverflowAllowsCriticalFile(t *testing.T) {
	// Both files are flagged and score 80; stable sort keeps file-set
	// order, so package.json fills most of the budget and main.js is the
	// one that overflows.
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "package.json", Content: strings.Repeat("x", 3800)}, // 950 tokens
			{Path: "main.js", Content: strings.Repeat("y", 400)},       // 100 tokens
		},
	}
	staticResult := &types.StaticScanResult{
		RiskFlags: []types.RiskFlag{
			{Code: "PIPE_BASH", Severity: types.SeverityCritical, File: "package.json"},
			{Code: "UNSAFE_EVAL", Severity: types.SeverityHigh, File: "main.js"},
		},
	}

	// At the default threshold a score of 80 is not critical enough to
	// overflow, so only the first file fits.
	strict := Build(full, staticResult, Config{TokenBudget: 1000})
	assert.Len(t, strict.Files, 1)

	// Lowering the threshold admits main.js within the 10% allowance.
	relaxed := Build(full, staticResult, Config{TokenBudget: 1000, CriticalScore: 70})
	require.Len(t, relaxed.Files, 2)
	assert.LessOrEqual(t, relaxed.TotalTokens, 1100)
}

func TestBuild_NegativeRatioDisablesOverflow(t *testing.T) {
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "package.json", Content: strings.Repeat("x", 3800)}, // 950 tokens
			{Path: "main.js", Content: strings.Repeat("y", 400)},       // 100 tokens
		},
	}
	staticResult := &types.StaticScanResult{
		RiskFlags: []types.RiskFlag{
			{Code: "PIPE_BASH", Severity: types.SeverityCritical, File: "package.json"},
			{Code: "UNSAFE_EVAL", Severity: types.SeverityHigh, File: "main.js"},
		},
	}

	// With overflow disabled the budget is a hard limit even for files
	// above the admission threshold.
	result := Build(full, staticResult, Config{TokenBudget: 1000, CriticalScore: 70, OverflowRatio: -1})

	assert.Len(t, result.Files, 1)
	assert.LessOrEqual(t, result.TotalTokens, 1000)
}

func TestBuild_NegativeCriticalScoreAdmitsAnyOverflow(t *testing.T) {
	full := &types.FileSet{
		Files: []types.RepoFile{
			{Path: "aaa.js", Content: strings.Repeat("x", 3800)}, // 950 tokens
			{Path: "bbb.js", Content: strings.Repeat("y", 400)},  // 100 tokens
		},
	}

	// A negative threshold lets any positive score use the allowance, so
	// the second plain file lands inside the 10% overflow.
	result := Build(full, nil, Config{TokenBudget: 1000, CriticalScore: -1})

	assert.Len(t, result.Files, 2)
	assert.LessOrEqual(t, result.TotalTokens, 1100)
}

func TestBuild_NeverExceedsOverflowCap(t *testing.T) {
	var files []types.RepoFile
	for i := 0; i < 30; i++ {
		files = append(files, types.RepoFile{
			Path:    "api/handler" + string(rune('a'+i%26)) + ".js", // "api" is high-value
			Content: strings.Repeat("z", 4000),
		})
	}
	full := &types.FileSet{Files: files}
	staticResult := &types.StaticScanResult{}
	for i := range files {
		staticResult.RiskFlags = append(staticResult.RiskFlags, types.RiskFlag{
			Code: "UNSAFE_EVAL", Severity: types.SeverityHigh, File: files[i].Path,
		})
	}

	result := Build(full, staticResult, Config{TokenBudget: 10_000, CriticalScore: 50})

	assert.LessOrEqual(t, result.TotalTokens, 11_000)
}

func TestBuild_EmptyFileSet(t *testing.T) {
	result := Build(&types.FileSet{}, nil, Config{})

	assert.Empty(t, result.Files)
	assert.Equal(t, 0, result.TotalTokens)
	assert.Equal(t, types.StrategyFull, result.Strategy)
}

func TestEstimateTokens_RoundsUp(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abc"))
	assert.Equal(t, 1, estimateTokens("abcd"))
	assert.Equal(t, 2, estimateTokens("abcde"))
}
