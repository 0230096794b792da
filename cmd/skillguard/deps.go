// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/artifacts"
	"github.com/ChrysKoum/skillguard-directory/internal/audit"
	"github.com/ChrysKoum/skillguard-directory/internal/fetch"
	"github.com/ChrysKoum/skillguard-directory/internal/httpapi"
	"github.com/ChrysKoum/skillguard-directory/internal/pack"
	"github.com/ChrysKoum/skillguard-directory/internal/pipeline"
	"github.com/ChrysKoum/skillguard-directory/internal/store"
)

// serverDeps bundles the pipeline and attempt store shared by the HTTP
// and MCP servers.
type serverDeps struct {
	pipeline *pipeline.Pipeline
	attempts httpapi.AttemptStore
	closer   func()
}

// buildServerDeps assembles the pipeline from viper configuration. When
// SKILLGUARD_DATABASE_URL is set, attempts persist to Postgres and stage
// transitions stream to it; otherwise an in-memory store is used. An
// object-storage endpoint is likewise optional.
func buildServerDeps(ctx context.Context, logger *zap.Logger) (*serverDeps, error) {
	client, err := audit.NewBedrockClient(ctx, audit.ClientConfig{Region: viper.GetString("region")})
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}

	fetcher := fetch.NewClient(fetch.Config{
		GitHubToken: viper.GetString("github-token"),
		Logger:      logger,
	})

	auditor := audit.New(client, audit.Config{
		Models: viper.GetStringSlice("models"),
		Logger: logger,
	})

	var attempts httpapi.AttemptStore
	closer := func() {}
	if dbURL := viper.GetString("database-url"); dbURL != "" {
		pg, err := store.Open(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("opening attempt store: %w", err)
		}
		attempts = pg
		closer = pg.Close
	} else {
		attempts = store.NewMemory()
		logger.Info("no database configured, using in-memory attempt store")
	}

	var artifactStore artifacts.Store
	if endpoint := viper.GetString("artifact-endpoint"); endpoint != "" {
		artifactStore, err = artifacts.NewMinioStore(artifacts.MinioConfig{
			Endpoint:  endpoint,
			AccessKey: viper.GetString("artifact-access-key"),
			SecretKey: viper.GetString("artifact-secret-key"),
			UseSSL:    viper.GetBool("artifact-use-ssl"),
			Bucket:    viper.GetString("artifact-bucket"),
		})
		if err != nil {
			closer()
			return nil, fmt.Errorf("initializing artifact store: %w", err)
		}
	}

	p := pipeline.New(pipeline.Deps{
		Fetcher:   fetcher,
		Auditor:   auditor,
		Sink:      attempts,
		Artifacts: artifactStore,
		PackCfg: pack.Config{
			TokenBudget: viper.GetInt("token-budget"),
			MaxFiles:    viper.GetInt("max-pack-files"),
		},
		Logger: logger,
	})

	return &serverDeps{pipeline: p, attempts: attempts, closer: closer}, nil
}
