// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridtown/gridtown/internal/world"
)

// HeroRepository implements world.HeroRepository using PostgreSQL.
//
// Activity counters are stored as a JSONB document so new counters can
// be added without a migration.
type HeroRepository struct {
	pool poolIface
}

// NewHeroRepository creates a new HeroRepository.
func NewHeroRepository(pool poolIface) *HeroRepository {
	return &HeroRepository{pool: pool}
}

const heroColumns = `id, user_id, name, position_x, position_y, organizations,
	current_organization, current_building, current_room, current_table,
	is_moving, is_active, activity, last_seen, created_at, updated_at`

// Get retrieves a hero by ID.
func (r *HeroRepository) Get(ctx context.Context, id ulid.ULID) (*world.Hero, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+heroColumns+`
		FROM heroes WHERE id = $1
	`, id.String())
	h, err := scanHeroRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("HERO_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("HERO_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return h, nil
}

// GetByUser retrieves the hero belonging to a user.
func (r *HeroRepository) GetByUser(ctx context.Context, userID ulid.ULID) (*world.Hero, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+heroColumns+`
		FROM heroes WHERE user_id = $1
	`, userID.String())
	h, err := scanHeroRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("HERO_NOT_FOUND").With("user_id", userID.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("HERO_GET_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return h, nil
}

// Create persists a new hero. A unique index on user_id enforces the
// one-hero-per-user rule at the storage layer.
func (r *HeroRepository) Create(ctx context.Context, h *world.Hero) error {
	activity, err := json.Marshal(h.Activity)
	if err != nil {
		return oops.Code("HERO_CREATE_FAILED").With("id", h.ID.String()).Wrap(err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO heroes (id, user_id, name, position_x, position_y, organizations,
			current_organization, current_building, current_room, current_table,
			is_moving, is_active, activity, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, h.ID.String(), h.UserID.String(), h.Name, h.Position.X, h.Position.Y,
		ulidsToStrings(h.Organizations),
		ulidToStringPtr(h.CurrentOrganization), ulidToStringPtr(h.CurrentBuilding),
		ulidToStringPtr(h.CurrentRoom), ulidToStringPtr(h.CurrentTable),
		h.IsMoving, h.IsActive, activity, h.LastSeen, h.CreatedAt)
	if isUniqueViolation(err) {
		return oops.Code("HERO_ALREADY_EXISTS").With("user_id", h.UserID.String()).Wrap(world.ErrAlreadyExists)
	}
	if err != nil {
		return oops.Code("HERO_CREATE_FAILED").With("id", h.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing hero.
func (r *HeroRepository) Update(ctx context.Context, h *world.Hero) error {
	activity, err := json.Marshal(h.Activity)
	if err != nil {
		return oops.Code("HERO_UPDATE_FAILED").With("id", h.ID.String()).Wrap(err)
	}
	result, err := r.pool.Exec(ctx, `
		UPDATE heroes SET name = $2, position_x = $3, position_y = $4,
			organizations = $5, current_organization = $6, current_building = $7,
			current_room = $8, current_table = $9, is_moving = $10, is_active = $11,
			activity = $12, last_seen = $13, updated_at = now()
		WHERE id = $1
	`, h.ID.String(), h.Name, h.Position.X, h.Position.Y,
		ulidsToStrings(h.Organizations),
		ulidToStringPtr(h.CurrentOrganization), ulidToStringPtr(h.CurrentBuilding),
		ulidToStringPtr(h.CurrentRoom), ulidToStringPtr(h.CurrentTable),
		h.IsMoving, h.IsActive, activity, h.LastSeen)
	if err != nil {
		return oops.Code("HERO_UPDATE_FAILED").With("id", h.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("HERO_NOT_FOUND").With("id", h.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// Search returns active heroes whose name contains the query as a
// literal substring, case-insensitively, ordered by name.
func (r *HeroRepository) Search(ctx context.Context, query string, opts world.ListOptions) ([]*world.Hero, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = world.DefaultLimit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+heroColumns+`
		FROM heroes WHERE is_active = TRUE AND name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name LIMIT $2 OFFSET $3
	`, escapeLike(query), limit, opts.Offset)
	if err != nil {
		return nil, oops.Code("HERO_QUERY_FAILED").With("query", query).Wrap(err)
	}
	defer rows.Close()

	heroes := make([]*world.Hero, 0)
	for rows.Next() {
		h, err := scanHero(rows)
		if err != nil {
			return nil, err
		}
		heroes = append(heroes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate heroes").Wrap(err)
	}
	return heroes, nil
}

type heroScanFields struct {
	idStr       string
	userStr     string
	orgs        []string
	currentOrg  *string
	currentBldg *string
	currentRoom *string
	currentTbl  *string
	activity    []byte
}

func (f *heroScanFields) apply(h *world.Hero) error {
	var err error
	if h.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse hero id").With("id", f.idStr).Wrap(err)
	}
	if h.UserID, err = ulid.Parse(f.userStr); err != nil {
		return oops.With("operation", "parse user_id").With("user_id", f.userStr).Wrap(err)
	}
	if h.Organizations, err = parseULIDs(f.orgs, "organizations"); err != nil {
		return err
	}
	if h.CurrentOrganization, err = parseOptionalULID(f.currentOrg, "current_organization"); err != nil {
		return err
	}
	if h.CurrentBuilding, err = parseOptionalULID(f.currentBldg, "current_building"); err != nil {
		return err
	}
	if h.CurrentRoom, err = parseOptionalULID(f.currentRoom, "current_room"); err != nil {
		return err
	}
	if h.CurrentTable, err = parseOptionalULID(f.currentTbl, "current_table"); err != nil {
		return err
	}
	if len(f.activity) > 0 {
		if err := json.Unmarshal(f.activity, &h.Activity); err != nil {
			return oops.With("operation", "parse activity").Wrap(err)
		}
	}
	return nil
}

func scanHeroRow(row pgx.Row) (*world.Hero, error) {
	var h world.Hero
	var f heroScanFields
	err := row.Scan(
		&f.idStr, &f.userStr, &h.Name, &h.Position.X, &h.Position.Y, &f.orgs,
		&f.currentOrg, &f.currentBldg, &f.currentRoom, &f.currentTbl,
		&h.IsMoving, &h.IsActive, &f.activity, &h.LastSeen, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := f.apply(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHero(rows pgx.Rows) (*world.Hero, error) {
	var h world.Hero
	var f heroScanFields
	if err := rows.Scan(
		&f.idStr, &f.userStr, &h.Name, &h.Position.X, &h.Position.Y, &f.orgs,
		&f.currentOrg, &f.currentBldg, &f.currentRoom, &f.currentTbl,
		&h.IsMoving, &h.IsActive, &f.activity, &h.LastSeen, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, oops.With("operation", "scan hero").Wrap(err)
	}
	if err := f.apply(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Compile-time interface check.
var _ world.HeroRepository = (*HeroRepository)(nil)
