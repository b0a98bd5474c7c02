// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gridtown/gridtown/internal/access"
	"github.com/gridtown/gridtown/internal/config"
	"github.com/gridtown/gridtown/internal/observability"
	"github.com/gridtown/gridtown/internal/server"
	"github.com/gridtown/gridtown/internal/store"
	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/internal/world/postgres"
)

// apiTokenTTL is how long issued access tokens stay valid.
const apiTokenTTL = 24 * time.Hour

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Gridtown API server",
		Long: `Start the HTTP API server together with the metrics/health
listener, connecting to PostgreSQL for world state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}

	// Flag names are the dotted config keys so flags override the file.
	// Defaults must mirror config.Default: the flag layer feeds defaults
	// back into the config when a key is absent.
	def := config.Default()
	cmd.Flags().String("server.addr", def.Server.Addr, "API listen address")
	cmd.Flags().String("server.jwt_secret", def.Server.JWTSecret, "secret for signing access tokens")
	cmd.Flags().String("database.url", def.Database.URL, "PostgreSQL connection URL")
	cmd.Flags().String("observability.addr", def.Observability.Addr, "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("world.default_organization", def.World.DefaultOrganization, "organization id new heroes join")
	cmd.Flags().Int("world.spawn_x", def.World.SpawnX, "spawn position x")
	cmd.Flags().Int("world.spawn_y", def.World.SpawnY, "spawn position y")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, autoMigrate bool) error {
	if cfg.Server.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.jwt_secret is required")
	}
	dbURL := databaseURL(cfg.Database.URL)

	if autoMigrate {
		if err := migrateUp(dbURL); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}

	pool, err := store.Open(ctx, dbURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()
	slog.Info("connected to database")

	var defaultOrg *ulid.ULID
	if cfg.World.DefaultOrganization != "" {
		id, err := ulid.Parse(cfg.World.DefaultOrganization)
		if err != nil {
			return oops.Code("CONFIG_INVALID").With("key", "world.default_organization").Wrap(err)
		}
		defaultOrg = &id
	}

	controller, err := buildAccessController(cfg.Access.Roles)
	if err != nil {
		return err
	}

	svc := world.NewService(world.ServiceConfig{
		OrganizationRepo:    postgres.NewOrganizationRepository(pool),
		BuildingRepo:        postgres.NewBuildingRepository(pool),
		RoomRepo:            postgres.NewRoomRepository(pool),
		TableRepo:           postgres.NewTableRepository(pool),
		HeroRepo:            postgres.NewHeroRepository(pool),
		DialogRepo:          postgres.NewDialogRepository(pool),
		RoadRepo:            postgres.NewRoadRepository(pool),
		ThreadRepo:          postgres.NewThreadRepository(pool),
		AccessControl:       controller,
		Emitter:             store.NewEventStore(pool),
		DefaultOrganization: defaultOrg,
		SpawnPosition:       world.Position{X: cfg.World.SpawnX, Y: cfg.World.SpawnY},
	})

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var obs *observability.Server
	var metrics *observability.Metrics
	if cfg.Observability.Addr != "" {
		obs = observability.NewServer(cfg.Observability.Addr, func() bool {
			return pool.Ping(ctx) == nil
		})
		world.RegisterMetrics(obs.Registry())
		metrics = obs.Metrics()

		obsErr, err := obs.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServer(ctx, cancel, obsErr, "observability")
		slog.Info("observability server started", "addr", obs.Addr())
	}

	api := server.New(cfg.Server, svc, server.NewJWTService(cfg.Server.JWTSecret, apiTokenTTL), metrics, slog.Default())
	apiErr, err := api.Start()
	if err != nil {
		stopObservability(obs, cfg.Server.ShutdownTimeout)
		return oops.Code("SERVER_START_FAILED").Wrap(err)
	}
	go monitorServer(ctx, cancel, apiErr, "api")
	slog.Info("api server started", "addr", api.Addr())

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := api.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// buildAccessController creates the authorization controller and binds
// the configured hero ids to elevated roles. The map keys are hero ids,
// not user ids, so assignments survive token re-issuance.
func buildAccessController(roles map[string]string) (*access.Controller, error) {
	controller := access.NewController()
	for heroID, role := range roles {
		if _, err := ulid.Parse(heroID); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("key", "access.roles").
				With("hero_id", heroID).
				Wrapf(err, "parse hero id")
		}
		if err := controller.AssignRole(access.HeroSubject(heroID), role); err != nil {
			return nil, err
		}
	}
	return controller, nil
}

func stopObservability(obs *observability.Server, timeout time.Duration) {
	if obs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := obs.Stop(ctx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}

// monitorServer cancels the run context when a server reports an error.
// A closed channel means the server stopped cleanly.
func monitorServer(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server failed, shutting down", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
