// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// Memory is an in-process attempt store used by the CLI and the HTTP
// server when no database is configured. It satisfies the same status
// sink contract as the Postgres store.
type Memory struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{attempts: make(map[string]*Attempt)}
}

// CreateAttempt registers a new queued attempt.
func (m *Memory) CreateAttempt(_ context.Context, slug, sourceURL string) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[id] = &Attempt{
		ID:        id,
		Slug:      slug,
		SourceURL: sourceURL,
		Status:    types.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

// RecordStage updates the attempt's stage, keeping terminal states sticky
// and the findings count monotonic.
func (m *Memory) RecordStage(_ context.Context, attemptID string, status types.Status, progress types.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	if a.Status.Terminal() {
		return nil
	}
	a.Status = status
	a.Stage = string(progress.Stage)
	a.Message = progress.Message
	if progress.Findings > a.Findings {
		a.Findings = progress.Findings
	}
	a.UpdatedAt = time.Now()
	return nil
}

// SaveReport stores the final report JSON and terminal status.
func (m *Memory) SaveReport(_ context.Context, attemptID string, status types.Status, report any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	a.ReportJSON = marshalReport(report)
	a.UpdatedAt = time.Now()
	return nil
}

// MarkError records a failed attempt.
func (m *Memory) MarkError(_ context.Context, attemptID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	a.Status = types.StatusError
	a.Message = message
	a.UpdatedAt = time.Now()
	return nil
}

// GetAttempt returns a copy of the attempt.
func (m *Memory) GetAttempt(_ context.Context, attemptID string) (*Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

// RecentCompleted returns the newest completed attempt for the slug
// within maxAge.
func (m *Memory) RecentCompleted(_ context.Context, slug string, maxAge time.Duration) (*Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Attempt
	cutoff := time.Now().Add(-maxAge)
	for _, a := range m.attempts {
		if a.Slug != slug || a.CreatedAt.Before(cutoff) {
			continue
		}
		if a.Status != types.StatusDone && a.Status != types.StatusDoneWithWarnings {
			continue
		}
		if best == nil || a.CreatedAt.After(best.CreatedAt) {
			best = a
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func marshalReport(report any) []byte {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil
	}
	return payload
}
