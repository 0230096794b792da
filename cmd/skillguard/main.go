// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Command skillguard audits third-party skill repositories: one-shot
// scans from the terminal, a long-running HTTP API, or an MCP stdio
// server for agent runtimes.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "1.0.0"

func main() {
	// Local .env is optional; real deployments use the environment.
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "skillguard",
		Short: "Security audit pipeline for skill repositories",
		Long:  "skillguard fetches a skill repository, runs a static risk scan, selects a token-budgeted file pack, deep-audits it with an LLM, and reduces the findings to a safety score and tier.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("region", "us-east-1", "AWS region for Bedrock")
	rootCmd.PersistentFlags().StringSlice("models", nil, "Ordered model fallback chain")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token for default-branch resolution")
	rootCmd.PersistentFlags().Int("token-budget", 120000, "Smart pack token budget")
	rootCmd.PersistentFlags().Int("max-pack-files", 60, "Smart pack file cap")

	// Bind flags to viper.
	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("models", rootCmd.PersistentFlags().Lookup("models"))
	viper.BindPFlag("github-token", rootCmd.PersistentFlags().Lookup("github-token"))
	viper.BindPFlag("token-budget", rootCmd.PersistentFlags().Lookup("token-budget"))
	viper.BindPFlag("max-pack-files", rootCmd.PersistentFlags().Lookup("max-pack-files"))

	// Env vars: SKILLGUARD_REGION, SKILLGUARD_GITHUB_TOKEN, etc.
	viper.SetEnvPrefix("SKILLGUARD")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".skillguard")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print skillguard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("skillguard %s\n", version)
		},
	}
}
