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

// DialogRepository implements world.DialogRepository using PostgreSQL.
type DialogRepository struct {
	pool poolIface
}

// NewDialogRepository creates a new DialogRepository.
func NewDialogRepository(pool poolIface) *DialogRepository {
	return &DialogRepository{pool: pool}
}

const dialogColumns = `id, dialog_type, participants, table_id, room_id,
	thread_id, is_active, created_at, updated_at`

// Get retrieves a dialog by ID.
func (r *DialogRepository) Get(ctx context.Context, id ulid.ULID) (*world.Dialog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+dialogColumns+`
		FROM dialogs WHERE id = $1
	`, id.String())
	d, err := scanDialogRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("DIALOG_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("DIALOG_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return d, nil
}

// Create persists a new dialog.
func (r *DialogRepository) Create(ctx context.Context, d *world.Dialog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dialogs (id, dialog_type, participants, table_id, room_id,
			thread_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID.String(), string(d.Type), ulidsToStrings(d.Participants),
		ulidToStringPtr(d.TableID), ulidToStringPtr(d.RoomID),
		d.ThreadID.String(), d.IsActive, d.CreatedAt)
	if err != nil {
		return oops.Code("DIALOG_CREATE_FAILED").With("id", d.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing dialog.
func (r *DialogRepository) Update(ctx context.Context, d *world.Dialog) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE dialogs SET participants = $2, is_active = $3, updated_at = now()
		WHERE id = $1
	`, d.ID.String(), ulidsToStrings(d.Participants), d.IsActive)
	if err != nil {
		return oops.Code("DIALOG_UPDATE_FAILED").With("id", d.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("DIALOG_NOT_FOUND").With("id", d.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListForHero returns active dialogs the hero participates in, newest
// first.
func (r *DialogRepository) ListForHero(ctx context.Context, heroID ulid.ULID) ([]*world.Dialog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+dialogColumns+`
		FROM dialogs WHERE is_active = TRUE AND $1 = ANY(participants)
		ORDER BY created_at DESC
	`, heroID.String())
	if err != nil {
		return nil, oops.Code("DIALOG_QUERY_FAILED").With("hero_id", heroID.String()).Wrap(err)
	}
	defer rows.Close()

	dialogs := make([]*world.Dialog, 0)
	for rows.Next() {
		d, err := scanDialog(rows)
		if err != nil {
			return nil, err
		}
		dialogs = append(dialogs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate dialogs").Wrap(err)
	}
	return dialogs, nil
}

type dialogScanFields struct {
	idStr        string
	typeStr      string
	participants []string
	tableStr     *string
	roomStr      *string
	threadStr    string
}

func (f *dialogScanFields) apply(d *world.Dialog) error {
	var err error
	if d.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse dialog id").With("id", f.idStr).Wrap(err)
	}
	d.Type = world.DialogType(f.typeStr)
	if d.Participants, err = parseULIDs(f.participants, "participants"); err != nil {
		return err
	}
	if d.TableID, err = parseOptionalULID(f.tableStr, "table_id"); err != nil {
		return err
	}
	if d.RoomID, err = parseOptionalULID(f.roomStr, "room_id"); err != nil {
		return err
	}
	if d.ThreadID, err = ulid.Parse(f.threadStr); err != nil {
		return oops.With("operation", "parse thread_id").With("thread_id", f.threadStr).Wrap(err)
	}
	return nil
}

func scanDialogRow(row pgx.Row) (*world.Dialog, error) {
	var d world.Dialog
	var f dialogScanFields
	err := row.Scan(
		&f.idStr, &f.typeStr, &f.participants, &f.tableStr, &f.roomStr,
		&f.threadStr, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := f.apply(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDialog(rows pgx.Rows) (*world.Dialog, error) {
	var d world.Dialog
	var f dialogScanFields
	if err := rows.Scan(
		&f.idStr, &f.typeStr, &f.participants, &f.tableStr, &f.roomStr,
		&f.threadStr, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, oops.With("operation", "scan dialog").Wrap(err)
	}
	if err := f.apply(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Compile-time interface check.
var _ world.DialogRepository = (*DialogRepository)(nil)
