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

// TableRepository implements world.TableRepository using PostgreSQL.
type TableRepository struct {
	pool poolIface
}

// NewTableRepository creates a new TableRepository.
func NewTableRepository(pool poolIface) *TableRepository {
	return &TableRepository{pool: pool}
}

const tableColumns = `id, name, organization_id, building_id, room_id,
	position_x, position_y, width, height, capacity, is_public, is_active,
	created_by, occupants, current_thread, created_at, updated_at`

// Get retrieves a table by ID.
func (r *TableRepository) Get(ctx context.Context, id ulid.ULID) (*world.Table, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tableColumns+`
		FROM tables WHERE id = $1
	`, id.String())
	t, err := scanTableRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TABLE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TABLE_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return t, nil
}

// Create persists a new table.
func (r *TableRepository) Create(ctx context.Context, t *world.Table) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tables (id, name, organization_id, building_id, room_id,
			position_x, position_y, width, height, capacity, is_public, is_active,
			created_by, occupants, current_thread, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, t.ID.String(), t.Name, t.OrganizationID.String(), t.BuildingID.String(), t.RoomID.String(),
		t.Position.X, t.Position.Y, t.Size.Width, t.Size.Height, t.Capacity,
		t.IsPublic, t.IsActive, t.CreatedBy.String(),
		ulidsToStrings(t.Occupants), ulidToStringPtr(t.CurrentThread), t.CreatedAt)
	if err != nil {
		return oops.Code("TABLE_CREATE_FAILED").With("id", t.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing table.
func (r *TableRepository) Update(ctx context.Context, t *world.Table) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE tables SET name = $2,
			position_x = $3, position_y = $4, width = $5, height = $6,
			capacity = $7, is_public = $8, is_active = $9,
			occupants = $10, current_thread = $11, updated_at = now()
		WHERE id = $1
	`, t.ID.String(), t.Name,
		t.Position.X, t.Position.Y, t.Size.Width, t.Size.Height,
		t.Capacity, t.IsPublic, t.IsActive,
		ulidsToStrings(t.Occupants), ulidToStringPtr(t.CurrentThread))
	if err != nil {
		return oops.Code("TABLE_UPDATE_FAILED").With("id", t.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TABLE_NOT_FOUND").With("id", t.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByRoom returns active tables of a room in creation order.
func (r *TableRepository) ListByRoom(ctx context.Context, roomID ulid.ULID) ([]*world.Table, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tableColumns+`
		FROM tables WHERE room_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, roomID.String())
	if err != nil {
		return nil, oops.Code("TABLE_QUERY_FAILED").With("room_id", roomID.String()).Wrap(err)
	}
	defer rows.Close()

	tables := make([]*world.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate tables").Wrap(err)
	}
	return tables, nil
}

type tableScanFields struct {
	idStr        string
	orgStr       string
	buildingStr  string
	roomStr      string
	createdByStr string
	occupants    []string
	threadStr    *string
}

func (f *tableScanFields) apply(t *world.Table) error {
	var err error
	if t.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse table id").With("id", f.idStr).Wrap(err)
	}
	if t.OrganizationID, err = ulid.Parse(f.orgStr); err != nil {
		return oops.With("operation", "parse organization_id").With("organization_id", f.orgStr).Wrap(err)
	}
	if t.BuildingID, err = ulid.Parse(f.buildingStr); err != nil {
		return oops.With("operation", "parse building_id").With("building_id", f.buildingStr).Wrap(err)
	}
	if t.RoomID, err = ulid.Parse(f.roomStr); err != nil {
		return oops.With("operation", "parse room_id").With("room_id", f.roomStr).Wrap(err)
	}
	if t.CreatedBy, err = ulid.Parse(f.createdByStr); err != nil {
		return oops.With("operation", "parse created_by").With("created_by", f.createdByStr).Wrap(err)
	}
	if t.Occupants, err = parseULIDs(f.occupants, "occupants"); err != nil {
		return err
	}
	if t.CurrentThread, err = parseOptionalULID(f.threadStr, "current_thread"); err != nil {
		return err
	}
	return nil
}

func scanTableRow(row pgx.Row) (*world.Table, error) {
	var t world.Table
	var f tableScanFields
	err := row.Scan(
		&f.idStr, &t.Name, &f.orgStr, &f.buildingStr, &f.roomStr,
		&t.Position.X, &t.Position.Y, &t.Size.Width, &t.Size.Height,
		&t.Capacity, &t.IsPublic, &t.IsActive, &f.createdByStr,
		&f.occupants, &f.threadStr, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := f.apply(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTable(rows pgx.Rows) (*world.Table, error) {
	var t world.Table
	var f tableScanFields
	if err := rows.Scan(
		&f.idStr, &t.Name, &f.orgStr, &f.buildingStr, &f.roomStr,
		&t.Position.X, &t.Position.Y, &t.Size.Width, &t.Size.Height,
		&t.Capacity, &t.IsPublic, &t.IsActive, &f.createdByStr,
		&f.occupants, &f.threadStr, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, oops.With("operation", "scan table").Wrap(err)
	}
	if err := f.apply(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Compile-time interface check.
var _ world.TableRepository = (*TableRepository)(nil)
