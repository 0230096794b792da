// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// RepoFile is a single text file extracted from a repository archive.
type RepoFile struct {
	Path    string `json:"path"`    // Path relative to the repository (or subpath) root
	Content string `json:"content"` // Decoded text content
}

// FileSet is the flat result of fetching a repository: every text file
// under the size cap, plus the full path tree for path-based heuristics.
//
// Invariant: every entry in Files has a corresponding entry in FileTree;
// the reverse does not hold, since FileTree also lists skipped paths.
type FileSet struct {
	Owner    string     `json:"owner"`
	Repo     string     `json:"repo"`
	Subpath  string     `json:"subpath,omitempty"` // Non-empty when the scan is scoped to a subdirectory
	Files    []RepoFile `json:"files"`
	FileTree []string   `json:"file_tree"`
}

// FileMetadata is the transient per-file record used while ranking files
// for the smart pack. It is never persisted.
type FileMetadata struct {
	Path      string
	Extension string
	Size      int // Content length in bytes
	Score     int // Heuristic value score, higher = more worth auditing
	Tokens    int // Estimated tokens (4 chars per token)
}

// PackStrategy names how a scan pack was assembled.
type PackStrategy string

const (
	StrategySmart PackStrategy = "smart" // Budgeted subset selected by score
	StrategyFull  PackStrategy = "full"  // Entire file set fit within budget
)

// SmartScanPack is the token-budgeted subset of a FileSet selected for LLM
// review.
//
// Invariant: TotalTokens is the sum of estimated tokens of the files
// actually included and never exceeds the configured budget beyond the
// bounded overflow allowance for high-scoring files.
type SmartScanPack struct {
	FileSet
	Strategy       PackStrategy `json:"strategy"`
	TotalTokens    int          `json:"total_tokens"`
	TruncatedFiles []string     `json:"truncated_files"`
	Warnings       []string     `json:"warnings"`
}
