// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

// Package store provides PostgreSQL connection management, schema
// migrations, and the append-only event log.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/gridtown/gridtown/internal/world"
)

// poolIface abstracts pgxpool.Pool for testing with pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open connects to PostgreSQL and verifies the connection, retrying
// with exponential backoff. Container orchestration often starts the
// service before the database accepts connections.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_UNREACHABLE").Wrap(err)
	}
	return pool, nil
}

// Event is a row in the append-only event log. Real-time consumers
// replay a stream to catch up after reconnecting.
type Event struct {
	ID        ulid.ULID
	Stream    string
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventStore persists world events to PostgreSQL. It satisfies
// world.EventEmitter.
type EventStore struct {
	pool poolIface
}

// NewEventStore creates an EventStore on the given pool.
func NewEventStore(pool poolIface) *EventStore {
	return &EventStore{pool: pool}
}

// Emit appends an event to a stream.
func (s *EventStore) Emit(ctx context.Context, stream, eventType string, payload []byte) error {
	id := ulid.Make()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, stream, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id.String(), stream, eventType, payload, time.Now().UTC())
	if err != nil {
		return oops.Code("EVENT_APPEND_FAILED").
			With("stream", stream).
			With("event_type", eventType).
			Wrap(err)
	}
	return nil
}

// Replay returns up to limit events from a stream with IDs greater
// than afterID. A zero afterID replays from the beginning. ULIDs sort
// lexicographically by creation time, so ordering by id is ordering by
// time.
func (s *EventStore) Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, stream, event_type, payload, created_at
		FROM events WHERE stream = $1 AND id > $2
		ORDER BY id LIMIT $3
	`, stream, afterID.String(), limit)
	if err != nil {
		return nil, oops.Code("EVENT_REPLAY_FAILED").With("stream", stream).Wrap(err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		var idStr string
		if err := rows.Scan(&idStr, &e.Stream, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan event").Wrap(err)
		}
		if e.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse event id").With("id", idStr).Wrap(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate events").Wrap(err)
	}
	return events, nil
}

// Compile-time interface check.
var _ world.EventEmitter = (*EventStore)(nil)
