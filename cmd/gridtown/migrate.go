// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package main

import (
	"log/slog"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gridtown/gridtown/internal/config"
	"github.com/gridtown/gridtown/internal/store"
)

// NewMigrateCmd creates the migrate subcommand with its actions.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back, or inspect schema migrations on the PostgreSQL database.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, err := resolveDatabaseURL()
			if err != nil {
				return err
			}
			if err := migrateUp(url); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (drops every table)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, err := resolveDatabaseURL()
			if err != nil {
				return err
			}
			m, err := store.NewMigrator(url)
			if err != nil {
				return err
			}
			defer closeMigrator(m)
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, err := resolveDatabaseURL()
			if err != nil {
				return err
			}
			m, err := store.NewMigrator(url)
			if err != nil {
				return err
			}
			defer closeMigrator(m)
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("Version: %d (dirty: %v)\n", version, dirty)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Force the migration version (dirty-state recovery)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").Wrapf(err, "parse version %q", args[0])
			}
			url, err := resolveDatabaseURL()
			if err != nil {
				return err
			}
			m, err := store.NewMigrator(url)
			if err != nil {
				return err
			}
			defer closeMigrator(m)
			if err := m.Force(version); err != nil {
				return err
			}
			cmd.Printf("Forced version to %d\n", version)
			return nil
		},
	})

	return cmd
}

// resolveDatabaseURL loads configuration and applies the DATABASE_URL
// environment override.
func resolveDatabaseURL() (string, error) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return "", err
	}
	url := databaseURL(cfg.Database.URL)
	if url == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	return url, nil
}

func migrateUp(url string) error {
	m, err := store.NewMigrator(url)
	if err != nil {
		return err
	}
	defer closeMigrator(m)
	return m.Up()
}

func closeMigrator(m *store.Migrator) {
	if err := m.Close(); err != nil {
		slog.Warn("error closing migrator", "error", err)
	}
}
