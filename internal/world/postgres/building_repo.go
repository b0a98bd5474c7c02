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

// BuildingRepository implements world.BuildingRepository using PostgreSQL.
type BuildingRepository struct {
	pool poolIface
}

// NewBuildingRepository creates a new BuildingRepository.
func NewBuildingRepository(pool poolIface) *BuildingRepository {
	return &BuildingRepository{pool: pool}
}

const buildingColumns = `id, name, description, organization_id, building_type,
	position_x, position_y, width, height, is_public, is_active, created_by,
	rooms, tables, created_at, updated_at`

// Get retrieves a building by ID.
func (r *BuildingRepository) Get(ctx context.Context, id ulid.ULID) (*world.Building, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+buildingColumns+`
		FROM buildings WHERE id = $1
	`, id.String())
	b, err := scanBuildingRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("BUILDING_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("BUILDING_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return b, nil
}

// Create persists a new building.
// Callers must validate the building before calling this method.
func (r *BuildingRepository) Create(ctx context.Context, b *world.Building) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO buildings (id, name, description, organization_id, building_type,
			position_x, position_y, width, height, is_public, is_active, created_by,
			rooms, tables, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, b.ID.String(), b.Name, b.Description, b.OrganizationID.String(), string(b.Type),
		b.Position.X, b.Position.Y, b.Size.Width, b.Size.Height, b.IsPublic, b.IsActive,
		b.CreatedBy.String(), ulidsToStrings(b.Rooms), ulidsToStrings(b.Tables), b.CreatedAt)
	if err != nil {
		return oops.Code("BUILDING_CREATE_FAILED").With("id", b.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing building.
func (r *BuildingRepository) Update(ctx context.Context, b *world.Building) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE buildings SET name = $2, description = $3, building_type = $4,
			position_x = $5, position_y = $6, width = $7, height = $8,
			is_public = $9, is_active = $10, rooms = $11, tables = $12, updated_at = now()
		WHERE id = $1
	`, b.ID.String(), b.Name, b.Description, string(b.Type),
		b.Position.X, b.Position.Y, b.Size.Width, b.Size.Height,
		b.IsPublic, b.IsActive, ulidsToStrings(b.Rooms), ulidsToStrings(b.Tables))
	if err != nil {
		return oops.Code("BUILDING_UPDATE_FAILED").With("id", b.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("BUILDING_NOT_FOUND").With("id", b.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByOrganization returns active buildings of an organization in creation order.
func (r *BuildingRepository) ListByOrganization(ctx context.Context, orgID ulid.ULID) ([]*world.Building, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+buildingColumns+`
		FROM buildings WHERE organization_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, orgID.String())
	if err != nil {
		return nil, oops.Code("BUILDING_QUERY_FAILED").With("organization_id", orgID.String()).Wrap(err)
	}
	defer rows.Close()

	buildings := make([]*world.Building, 0)
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate buildings").Wrap(err)
	}
	return buildings, nil
}

type buildingScanFields struct {
	idStr        string
	orgStr       string
	typeStr      string
	createdByStr string
	rooms        []string
	tables       []string
}

func (f *buildingScanFields) apply(b *world.Building) error {
	var err error
	if b.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse building id").With("id", f.idStr).Wrap(err)
	}
	if b.OrganizationID, err = ulid.Parse(f.orgStr); err != nil {
		return oops.With("operation", "parse organization_id").With("organization_id", f.orgStr).Wrap(err)
	}
	if b.CreatedBy, err = ulid.Parse(f.createdByStr); err != nil {
		return oops.With("operation", "parse created_by").With("created_by", f.createdByStr).Wrap(err)
	}
	b.Type = world.BuildingType(f.typeStr)
	if b.Rooms, err = parseULIDs(f.rooms, "rooms"); err != nil {
		return err
	}
	if b.Tables, err = parseULIDs(f.tables, "tables"); err != nil {
		return err
	}
	return nil
}

func scanBuildingRow(row pgx.Row) (*world.Building, error) {
	var b world.Building
	var f buildingScanFields
	err := row.Scan(
		&f.idStr, &b.Name, &b.Description, &f.orgStr, &f.typeStr,
		&b.Position.X, &b.Position.Y, &b.Size.Width, &b.Size.Height,
		&b.IsPublic, &b.IsActive, &f.createdByStr,
		&f.rooms, &f.tables, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := f.apply(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBuilding(rows pgx.Rows) (*world.Building, error) {
	var b world.Building
	var f buildingScanFields
	if err := rows.Scan(
		&f.idStr, &b.Name, &b.Description, &f.orgStr, &f.typeStr,
		&b.Position.X, &b.Position.Y, &b.Size.Width, &b.Size.Height,
		&b.IsPublic, &b.IsActive, &f.createdByStr,
		&f.rooms, &f.tables, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, oops.With("operation", "scan building").Wrap(err)
	}
	if err := f.apply(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Compile-time interface check.
var _ world.BuildingRepository = (*BuildingRepository)(nil)
