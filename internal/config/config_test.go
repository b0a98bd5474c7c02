// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtown/gridtown/pkg/errutil"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ":9090", cfg.Observability.Addr)
	assert.Equal(t, 400, cfg.World.SpawnX)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridtown.yaml")
	content := `
server:
  addr: ":7777"
world:
  default_organization: "01JGT0000000000000000GRID1"
  spawn_x: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "01JGT0000000000000000GRID1", cfg.World.DefaultOrganization)
	assert.Equal(t, 100, cfg.World.SpawnX)
	// Untouched keys keep defaults.
	assert.Equal(t, ":9090", cfg.Observability.Addr)
}

func TestLoad_AccessRoles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridtown.yaml")
	content := `
access:
  roles:
    "01JGT000000000000000HERO01": admin
    "01JGT000000000000000HERO02": moderator
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.Access.Roles["01JGT000000000000000HERO01"])
	assert.Equal(t, "moderator", cfg.Access.Roles["01JGT000000000000000HERO02"])
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridtown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7777\"\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "", "")
	require.NoError(t, flags.Parse([]string{"--server.addr=:6666"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":6666", cfg.Server.Addr)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	cfg, err := Load("/nonexistent/gridtown.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\nnot yaml: ["), 0o600))

	_, err := Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_INVALID")
}
