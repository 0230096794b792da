// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// Store persists a rendered artifact and returns its locator.
type Store interface {
	Put(ctx context.Context, path string, content []byte, contentType string) (string, error)
}

// MinioStore is an object-storage backed Store.
type MinioStore struct {
	mc     *minio.Client
	bucket string
}

// MinioConfig configures the object-storage client.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// NewMinioStore connects to the configured object-storage endpoint.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{mc: mc, bucket: cfg.Bucket}, nil
}

// Put uploads one artifact and returns its storage path.
func (s *MinioStore) Put(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	_, err := s.mc.PutObject(ctx, s.bucket, path, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", path, err)
	}
	return path, nil
}

// Generate renders and stores the policy and verification-plan documents
// for a completed audit, returning the locators of what was written.
func Generate(ctx context.Context, store Store, scanID string, result *types.DeepAuditResult) ([]string, error) {
	var created []string

	policy, err := RenderPolicy(scanID, result, time.Now())
	if err != nil {
		return created, fmt.Errorf("rendering policy: %w", err)
	}
	policyPath := fmt.Sprintf("skillguard/%s/policy.json", scanID)
	if _, err := store.Put(ctx, policyPath, policy, "application/json"); err != nil {
		return created, err
	}
	created = append(created, policyPath)

	plan := RenderVerificationPlan(scanID, result)
	planPath := fmt.Sprintf("skillguard/%s/verification_plan.md", scanID)
	if _, err := store.Put(ctx, planPath, []byte(plan), "text/markdown"); err != nil {
		return created, err
	}
	created = append(created, planPath)

	return created, nil
}
