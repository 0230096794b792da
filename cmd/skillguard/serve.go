// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/httpapi"
)

// newServeCmd creates the "serve" command.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan HTTP API",
		Long:  "Serve exposes POST /api/scan and GET /api/scan/{id} plus health and metrics endpoints.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().String("database-url", "", "Postgres URL for the attempt store (optional)")
	cmd.Flags().String("artifact-endpoint", "", "Object-storage endpoint for scan artifacts (optional)")
	cmd.Flags().String("artifact-bucket", "skillguard", "Object-storage bucket")
	cmd.Flags().String("artifact-access-key", "", "Object-storage access key")
	cmd.Flags().String("artifact-secret-key", "", "Object-storage secret key")
	cmd.Flags().Bool("artifact-use-ssl", true, "Use TLS for object storage")
	cmd.Flags().Duration("scan-timeout", 10*time.Minute, "Per-attempt deadline")

	viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	viper.BindPFlag("database-url", cmd.Flags().Lookup("database-url"))
	viper.BindPFlag("artifact-endpoint", cmd.Flags().Lookup("artifact-endpoint"))
	viper.BindPFlag("artifact-bucket", cmd.Flags().Lookup("artifact-bucket"))
	viper.BindPFlag("artifact-access-key", cmd.Flags().Lookup("artifact-access-key"))
	viper.BindPFlag("artifact-secret-key", cmd.Flags().Lookup("artifact-secret-key"))
	viper.BindPFlag("artifact-use-ssl", cmd.Flags().Lookup("artifact-use-ssl"))
	viper.BindPFlag("scan-timeout", cmd.Flags().Lookup("scan-timeout"))

	return cmd
}

// runServe starts the HTTP API and blocks until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	deps, err := buildServerDeps(ctx, logger)
	if err != nil {
		return err
	}
	defer deps.closer()

	api := httpapi.NewServer(httpapi.Config{
		Pipeline:    deps.pipeline,
		Store:       deps.attempts,
		Logger:      logger,
		ScanTimeout: viper.GetDuration("scan-timeout"),
	})

	srv := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
