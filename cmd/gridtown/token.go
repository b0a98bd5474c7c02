// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package main

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gridtown/gridtown/internal/config"
	"github.com/gridtown/gridtown/internal/server"
)

// NewTokenCmd creates the token subcommand, a development helper that
// mints access tokens without a separate identity provider.
func NewTokenCmd() *cobra.Command {
	var (
		userID string
		name   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user",
		Long: `Mint a signed access token for the given user id, using the
configured signing secret. New user ids can be generated with any ULID
tool; the first API call registers the hero.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return oops.Code("CONFIG_INVALID").Errorf("server.jwt_secret is required")
			}

			var uid ulid.ULID
			if userID == "" {
				uid = ulid.Make()
				cmd.Printf("User ID: %s\n", uid)
			} else {
				uid, err = ulid.Parse(userID)
				if err != nil {
					return oops.Code("INVALID_USER_ID").Wrapf(err, "parse user id %q", userID)
				}
			}

			token, err := server.NewJWTService(cfg.Server.JWTSecret, ttl).Generate(uid, name)
			if err != nil {
				return oops.Wrapf(err, "generate token")
			}
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (ULID; generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name stored in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
