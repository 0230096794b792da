// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// Stage identifies a pipeline phase within a running scan attempt.
type Stage string

const (
	StageFetching     Stage = "fetching"
	StageStatic       Stage = "static"
	StagePackBuilding Stage = "pack-building"
	StageDeepAudit    Stage = "deep-audit"
)

// Status is the terminal or in-flight state of a scan attempt.
// Transitions are one-directional: queued -> running -> done |
// done_with_warnings | error. A rescan starts a new attempt; an attempt
// never re-enters running after reaching a terminal state.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusRunning          Status = "running"
	StatusDone             Status = "done"
	StatusDoneWithWarnings Status = "done_with_warnings"
	StatusError            Status = "error"
)

// Terminal reports whether s is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusDoneWithWarnings, StatusError:
		return true
	}
	return false
}

// Progress is a single observability tick emitted during a scan attempt.
type Progress struct {
	Stage    Stage  `json:"stage"`
	Message  string `json:"message"`
	Findings int    `json:"findings"` // Finding count so far during deep audit
}
