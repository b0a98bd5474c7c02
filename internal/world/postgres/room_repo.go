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

// RoomRepository implements world.RoomRepository using PostgreSQL.
type RoomRepository struct {
	pool poolIface
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool poolIface) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomColumns = `id, name, description, organization_id, building_id,
	position_x, position_y, width, height, capacity, is_public, is_active,
	created_by, tables, occupants, created_at, updated_at`

// Get retrieves a room by ID.
func (r *RoomRepository) Get(ctx context.Context, id ulid.ULID) (*world.Room, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+roomColumns+`
		FROM rooms WHERE id = $1
	`, id.String())
	rm, err := scanRoomRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROOM_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROOM_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return rm, nil
}

// Create persists a new room.
func (r *RoomRepository) Create(ctx context.Context, rm *world.Room) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rooms (id, name, description, organization_id, building_id,
			position_x, position_y, width, height, capacity, is_public, is_active,
			created_by, tables, occupants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, rm.ID.String(), rm.Name, rm.Description, rm.OrganizationID.String(), rm.BuildingID.String(),
		rm.Position.X, rm.Position.Y, rm.Size.Width, rm.Size.Height, rm.Capacity,
		rm.IsPublic, rm.IsActive, rm.CreatedBy.String(),
		ulidsToStrings(rm.Tables), ulidsToStrings(rm.Occupants), rm.CreatedAt)
	if err != nil {
		return oops.Code("ROOM_CREATE_FAILED").With("id", rm.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing room.
func (r *RoomRepository) Update(ctx context.Context, rm *world.Room) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE rooms SET name = $2, description = $3,
			position_x = $4, position_y = $5, width = $6, height = $7,
			capacity = $8, is_public = $9, is_active = $10,
			tables = $11, occupants = $12, updated_at = now()
		WHERE id = $1
	`, rm.ID.String(), rm.Name, rm.Description,
		rm.Position.X, rm.Position.Y, rm.Size.Width, rm.Size.Height,
		rm.Capacity, rm.IsPublic, rm.IsActive,
		ulidsToStrings(rm.Tables), ulidsToStrings(rm.Occupants))
	if err != nil {
		return oops.Code("ROOM_UPDATE_FAILED").With("id", rm.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ROOM_NOT_FOUND").With("id", rm.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByBuilding returns active rooms of a building in creation order.
func (r *RoomRepository) ListByBuilding(ctx context.Context, buildingID ulid.ULID) ([]*world.Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms WHERE building_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, buildingID.String())
	if err != nil {
		return nil, oops.Code("ROOM_QUERY_FAILED").With("building_id", buildingID.String()).Wrap(err)
	}
	defer rows.Close()

	rooms := make([]*world.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate rooms").Wrap(err)
	}
	return rooms, nil
}

type roomScanFields struct {
	idStr        string
	orgStr       string
	buildingStr  string
	createdByStr string
	tables       []string
	occupants    []string
}

func (f *roomScanFields) apply(rm *world.Room) error {
	var err error
	if rm.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse room id").With("id", f.idStr).Wrap(err)
	}
	if rm.OrganizationID, err = ulid.Parse(f.orgStr); err != nil {
		return oops.With("operation", "parse organization_id").With("organization_id", f.orgStr).Wrap(err)
	}
	if rm.BuildingID, err = ulid.Parse(f.buildingStr); err != nil {
		return oops.With("operation", "parse building_id").With("building_id", f.buildingStr).Wrap(err)
	}
	if rm.CreatedBy, err = ulid.Parse(f.createdByStr); err != nil {
		return oops.With("operation", "parse created_by").With("created_by", f.createdByStr).Wrap(err)
	}
	if rm.Tables, err = parseULIDs(f.tables, "tables"); err != nil {
		return err
	}
	if rm.Occupants, err = parseULIDs(f.occupants, "occupants"); err != nil {
		return err
	}
	return nil
}

func scanRoomRow(row pgx.Row) (*world.Room, error) {
	var rm world.Room
	var f roomScanFields
	err := row.Scan(
		&f.idStr, &rm.Name, &rm.Description, &f.orgStr, &f.buildingStr,
		&rm.Position.X, &rm.Position.Y, &rm.Size.Width, &rm.Size.Height,
		&rm.Capacity, &rm.IsPublic, &rm.IsActive, &f.createdByStr,
		&f.tables, &f.occupants, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := f.apply(&rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

func scanRoom(rows pgx.Rows) (*world.Room, error) {
	var rm world.Room
	var f roomScanFields
	if err := rows.Scan(
		&f.idStr, &rm.Name, &rm.Description, &f.orgStr, &f.buildingStr,
		&rm.Position.X, &rm.Position.Y, &rm.Size.Width, &rm.Size.Height,
		&rm.Capacity, &rm.IsPublic, &rm.IsActive, &f.createdByStr,
		&f.tables, &f.occupants, &rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		return nil, oops.With("operation", "scan room").Wrap(err)
	}
	if err := f.apply(&rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Compile-time interface check.
var _ world.RoomRepository = (*RoomRepository)(nil)
