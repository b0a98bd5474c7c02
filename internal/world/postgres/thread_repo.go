// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridtown/gridtown/internal/world"
)

// ThreadRepository implements world.ThreadRepository using PostgreSQL.
type ThreadRepository struct {
	pool poolIface
}

// NewThreadRepository creates a new ThreadRepository.
func NewThreadRepository(pool poolIface) *ThreadRepository {
	return &ThreadRepository{pool: pool}
}

// Create persists a new thread.
func (r *ThreadRepository) Create(ctx context.Context, t *world.Thread) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO threads (id, name, participants, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID.String(), t.Name, ulidsToStrings(t.Participants), t.IsActive, t.CreatedAt)
	if err != nil {
		return oops.Code("THREAD_CREATE_FAILED").With("id", t.ID.String()).Wrap(err)
	}
	return nil
}

// Get retrieves a thread by ID.
func (r *ThreadRepository) Get(ctx context.Context, id ulid.ULID) (*world.Thread, error) {
	var t world.Thread
	var idStr string
	var participants []string
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, participants, is_active, created_at
		FROM threads WHERE id = $1
	`, id.String()).Scan(&idStr, &t.Name, &participants, &t.IsActive, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("THREAD_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("THREAD_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	if t.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse thread id").With("id", idStr).Wrap(err)
	}
	if t.Participants, err = parseULIDs(participants, "participants"); err != nil {
		return nil, err
	}
	return &t, nil
}

// Deactivate marks a thread inactive.
func (r *ThreadRepository) Deactivate(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE threads SET is_active = FALSE WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("THREAD_DEACTIVATE_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("THREAD_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ world.ThreadRepository = (*ThreadRepository)(nil)
