// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/pkg/skillguard"
	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// newScanCmd creates the "scan" command.
func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <repository-url>",
		Short: "Audit a single skill repository",
		Long:  "Scan fetches the repository, runs the static scan and deep audit, and prints the full report as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	cmd.Flags().Bool("quiet", false, "Suppress progress output on stderr")

	return cmd
}

// runScan executes one scan attempt end to end.
func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]
	quiet, _ := cmd.Flags().GetBool("quiet")

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	scanner, err := skillguard.New(ctx, skillguard.Config{
		Region:       viper.GetString("region"),
		Models:       viper.GetStringSlice("models"),
		GitHubToken:  viper.GetString("github-token"),
		TokenBudget:  viper.GetInt("token-budget"),
		MaxPackFiles: viper.GetInt("max-pack-files"),
	}, logger)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	var progress skillguard.ProgressFunc
	if !quiet {
		progress = func(p types.Progress) {
			if p.Findings > 0 {
				fmt.Fprintf(os.Stderr, "[%s] %s (%d findings)\n", p.Stage, p.Message, p.Findings)
				return
			}
			fmt.Fprintf(os.Stderr, "[%s] %s\n", p.Stage, p.Message)
		}
	}

	report, err := scanner.Scan(ctx, url, progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	printReport(report)
	return nil
}

// printReport outputs the report as JSON to stdout.
func printReport(report *skillguard.Report) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling report: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
