// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtown/gridtown/internal/access"
	"github.com/gridtown/gridtown/internal/config"
	"github.com/gridtown/gridtown/internal/server"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	subcommands := []string{"serve", "migrate", "seed", "status", "token"}
	for _, sub := range subcommands {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "config flag with space",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "config flag with equals",
			args:     []string{"--config=/etc/gridtown.yaml", "--help"},
			wantFlag: "/etc/gridtown.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset global
			configFile = ""

			cmd := NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "test-version")
}

func TestRootCommand_NoArgs(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	// Root command with no args shows help without error.
	require.NoError(t, cmd.Execute())
}

func TestServeCommand_FlagDefaults(t *testing.T) {
	cmd := NewServeCmd()
	def := config.Default()

	addr, err := cmd.Flags().GetString("server.addr")
	require.NoError(t, err)
	assert.Equal(t, def.Server.Addr, addr)

	dbURL, err := cmd.Flags().GetString("database.url")
	require.NoError(t, err)
	assert.Equal(t, def.Database.URL, dbURL)

	spawnX, err := cmd.Flags().GetInt("world.spawn_x")
	require.NoError(t, err)
	assert.Equal(t, def.World.SpawnX, spawnX)

	autoMigrate, err := cmd.Flags().GetBool("auto-migrate")
	require.NoError(t, err)
	assert.False(t, autoMigrate, "auto-migrate should default off")
}

func TestMigrateCommand_HasActions(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"migrate", "--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, action := range []string{"up", "down", "version", "force"} {
		assert.Contains(t, output, action, "Migrate help missing %q action", action)
	}
}

func TestSeedCommand_TimeoutFlag(t *testing.T) {
	cmd := NewSeedCmd()

	timeout, err := cmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout, "default timeout should be 30s")
}

func TestSeedFounderUserIDIsValid(t *testing.T) {
	require.Len(t, seedFounderUserID, 26, "founder user id must be exactly 26 characters")

	id, err := ulid.Parse(seedFounderUserID)
	require.NoError(t, err)
	require.NotEqual(t, ulid.ULID{}, id, "founder user id must not be zero")
}

func TestBuildAccessController(t *testing.T) {
	ctx := context.Background()
	heroID := ulid.Make().String()
	target := "organization:" + ulid.Make().String()

	t.Run("grants configured roles their permissions", func(t *testing.T) {
		controller, err := buildAccessController(map[string]string{heroID: "admin"})
		require.NoError(t, err)
		assert.True(t, controller.Check(ctx, access.HeroSubject(heroID), "delete", target))
	})

	t.Run("unlisted heroes keep the default role", func(t *testing.T) {
		controller, err := buildAccessController(map[string]string{heroID: "moderator"})
		require.NoError(t, err)
		other := access.HeroSubject(ulid.Make().String())
		assert.False(t, controller.Check(ctx, other, "delete", target))
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := buildAccessController(map[string]string{heroID: "overlord"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overlord")
	})

	t.Run("rejects malformed hero ids", func(t *testing.T) {
		_, err := buildAccessController(map[string]string{"not-a-ulid": "admin"})
		require.Error(t, err)
	})
}

func TestTokenCommand_MintsValidToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  jwt_secret: test-secret\n"), 0o600))

	configFile = ""
	userID := ulid.Make()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"token", "--config", path, "--user", userID.String(), "--name", "Ada"})

	require.NoError(t, cmd.Execute())

	token := strings.TrimSpace(buf.String())
	require.NotEmpty(t, token)

	claims, err := server.NewJWTService("test-secret", time.Hour).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: :0\n"), 0o600))

	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"token", "--config", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}
