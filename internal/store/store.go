// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package store persists scan attempts and their stage transitions in
// Postgres for external polling. The pipeline's correctness never depends
// on these writes succeeding; callers surface failures instead of
// retrying indefinitely.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// ErrNotFound indicates the requested attempt does not exist.
var ErrNotFound = errors.New("attempt not found")

// Store wraps a pgx connection pool.
type Store struct{ Pool *pgxpool.Pool }

// Open connects to the database.
func Open(ctx context.Context, url string) (*Store, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: p}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.Pool.Close() }

// Attempt is one scan attempt row.
type Attempt struct {
	ID         string
	Slug       string
	SourceURL  string
	Status     types.Status
	Stage      string
	Message    string
	Findings   int
	ReportJSON []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateAttempt inserts a queued attempt and returns its ID. Each rescan
// creates a new, independent attempt; rows are never reused.
func (s *Store) CreateAttempt(ctx context.Context, slug, sourceURL string) (string, error) {
	id := uuid.NewString()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO scan_attempts (id, slug, source_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, 'queued', now(), now())
	`, id, slug, sourceURL)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordStage persists a stage transition or progress tick. It implements
// pipeline.StatusSink. Terminal states are sticky: once an attempt is
// done or errored, later writes are ignored.
func (s *Store) RecordStage(ctx context.Context, attemptID string, status types.Status, progress types.Progress) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE scan_attempts
		SET status=$2, stage=$3, message=$4,
		    findings=GREATEST(findings, $5),
		    updated_at=now()
		WHERE id=$1
		  AND status NOT IN ('done', 'done_with_warnings', 'error')
	`, attemptID, string(status), string(progress.Stage), progress.Message, progress.Findings)
	return err
}

// SaveReport stores the final report JSON alongside the terminal status.
func (s *Store) SaveReport(ctx context.Context, attemptID string, status types.Status, report any) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		UPDATE scan_attempts
		SET status=$2, report_json=$3, updated_at=now()
		WHERE id=$1
	`, attemptID, string(status), payload)
	return err
}

// MarkError records an unrecoverable failure.
func (s *Store) MarkError(ctx context.Context, attemptID, message string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE scan_attempts
		SET status='error', message=$2, updated_at=now()
		WHERE id=$1
	`, attemptID, message)
	return err
}

// GetAttempt loads one attempt by ID.
func (s *Store) GetAttempt(ctx context.Context, attemptID string) (*Attempt, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, slug, source_url, status, stage, message, findings,
		       COALESCE(report_json, 'null'::jsonb), created_at, updated_at
		FROM scan_attempts
		WHERE id=$1
	`, attemptID)
	return scanAttempt(row)
}

// RecentCompleted returns the most recent completed attempt for a slug
// newer than maxAge, or ErrNotFound. Used for the rescan cache policy.
func (s *Store) RecentCompleted(ctx context.Context, slug string, maxAge time.Duration) (*Attempt, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, slug, source_url, status, stage, message, findings,
		       COALESCE(report_json, 'null'::jsonb), created_at, updated_at
		FROM scan_attempts
		WHERE slug=$1
		  AND status IN ('done', 'done_with_warnings')
		  AND created_at > now() - $2::interval
		ORDER BY created_at DESC
		LIMIT 1
	`, slug, maxAge.String())
	return scanAttempt(row)
}

func scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	var status, stage string
	err := row.Scan(&a.ID, &a.Slug, &a.SourceURL, &status, &stage, &a.Message,
		&a.Findings, &a.ReportJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Status = types.Status(status)
	a.Stage = stage
	return &a, nil
}
