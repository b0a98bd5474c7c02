// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gridtown/gridtown/internal/logging"
)

// Global flags available to all subcommands.
var (
	configFile string
	logLevel   string
	logFormat  string
)

// NewRootCmd creates the root command for the Gridtown CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridtown",
		Short: "Gridtown - a collaborative game-world server",
		Long: `Gridtown runs a shared game world of organizations, buildings,
rooms, and tables where heroes meet and talk, exposed over an HTTP API.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.SetDefault("gridtown", version, logFormat, logging.ParseLevel(logLevel))
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json or text)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewTokenCmd())

	return cmd
}

// databaseURL resolves the database URL: the DATABASE_URL environment
// variable wins over the configured value.
func databaseURL(configured string) string {
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env
	}
	return configured
}
