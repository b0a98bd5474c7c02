// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gridtown/gridtown/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container, opens a pool,
// and applies migrations.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gridtown_test"),
		postgres.WithUsername("gridtown"),
		postgres.WithPassword("gridtown"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	_ = migrator.Close()

	pool, err := store.Open(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return pool, cleanup, nil
}

var _ = Describe("EventStore", func() {
	var pool *pgxpool.Pool
	var cleanup func()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Emit and Replay", func() {
		It("round-trips events in emission order", func() {
			ctx := context.Background()
			eventStore := store.NewEventStore(pool)

			Expect(eventStore.Emit(ctx, "room:lobby", "hero_joined", []byte(`{"hero_id":"a"}`))).To(Succeed())
			Expect(eventStore.Emit(ctx, "room:lobby", "hero_left", []byte(`{"hero_id":"a"}`))).To(Succeed())
			Expect(eventStore.Emit(ctx, "room:other", "hero_joined", []byte(`{"hero_id":"b"}`))).To(Succeed())

			events, err := eventStore.Replay(ctx, "room:lobby", ulid.ULID{}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))
			Expect(events[0].Type).To(Equal("hero_joined"))
			Expect(events[1].Type).To(Equal("hero_left"))
		})

		It("replays only events after the cursor", func() {
			ctx := context.Background()
			eventStore := store.NewEventStore(pool)

			Expect(eventStore.Emit(ctx, "room:lobby", "hero_joined", []byte(`{}`))).To(Succeed())
			Expect(eventStore.Emit(ctx, "room:lobby", "hero_left", []byte(`{}`))).To(Succeed())

			all, err := eventStore.Replay(ctx, "room:lobby", ulid.ULID{}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			tail, err := eventStore.Replay(ctx, "room:lobby", all[0].ID, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail).To(HaveLen(1))
			Expect(tail[0].ID).To(Equal(all[1].ID))
		})
	})

	Describe("Migrator", func() {
		It("reports a clean version after Up", func() {
			connStr := pool.Config().ConnString()
			migrator, err := store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			defer migrator.Close()

			version, dirty, err := migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(dirty).To(BeFalse())
			Expect(version).To(BeNumerically(">=", 1))
		})
	})
})
