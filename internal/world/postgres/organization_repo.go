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

// OrganizationRepository implements world.OrganizationRepository using PostgreSQL.
type OrganizationRepository struct {
	pool poolIface
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(pool poolIface) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

const organizationColumns = `id, name, description, is_public, is_active, created_by,
	members, buildings, rooms, tables, roads, created_at, updated_at`

// Get retrieves an organization by ID.
func (r *OrganizationRepository) Get(ctx context.Context, id ulid.ULID) (*world.Organization, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations WHERE id = $1
	`, id.String())
	org, err := scanOrganizationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ORGANIZATION_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ORGANIZATION_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return org, nil
}

// Create persists a new organization.
// Callers must validate the organization before calling this method.
func (r *OrganizationRepository) Create(ctx context.Context, org *world.Organization) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO organizations (id, name, description, is_public, is_active, created_by,
			members, buildings, rooms, tables, roads, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, org.ID.String(), org.Name, org.Description, org.IsPublic, org.IsActive, org.CreatedBy.String(),
		ulidsToStrings(org.Members), ulidsToStrings(org.Buildings), ulidsToStrings(org.Rooms),
		ulidsToStrings(org.Tables), ulidsToStrings(org.Roads), org.CreatedAt)
	if err != nil {
		return oops.Code("ORGANIZATION_CREATE_FAILED").With("id", org.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing organization.
func (r *OrganizationRepository) Update(ctx context.Context, org *world.Organization) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE organizations SET name = $2, description = $3, is_public = $4, is_active = $5,
			members = $6, buildings = $7, rooms = $8, tables = $9, roads = $10, updated_at = now()
		WHERE id = $1
	`, org.ID.String(), org.Name, org.Description, org.IsPublic, org.IsActive,
		ulidsToStrings(org.Members), ulidsToStrings(org.Buildings), ulidsToStrings(org.Rooms),
		ulidsToStrings(org.Tables), ulidsToStrings(org.Roads))
	if err != nil {
		return oops.Code("ORGANIZATION_UPDATE_FAILED").With("id", org.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ORGANIZATION_NOT_FOUND").With("id", org.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListActive returns active organizations in creation order.
func (r *OrganizationRepository) ListActive(ctx context.Context, opts world.ListOptions) ([]*world.Organization, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = world.DefaultLimit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations WHERE is_active = TRUE
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, opts.Offset)
	if err != nil {
		return nil, oops.Code("ORGANIZATION_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	return scanOrganizations(rows)
}

// organizationScanFields holds intermediate scan values.
type organizationScanFields struct {
	idStr        string
	createdByStr string
	members      []string
	buildings    []string
	rooms        []string
	tables       []string
	roads        []string
}

func (f *organizationScanFields) apply(org *world.Organization) error {
	var err error
	if org.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse organization id").With("id", f.idStr).Wrap(err)
	}
	if org.CreatedBy, err = ulid.Parse(f.createdByStr); err != nil {
		return oops.With("operation", "parse created_by").With("created_by", f.createdByStr).Wrap(err)
	}
	if org.Members, err = parseULIDs(f.members, "members"); err != nil {
		return err
	}
	if org.Buildings, err = parseULIDs(f.buildings, "buildings"); err != nil {
		return err
	}
	if org.Rooms, err = parseULIDs(f.rooms, "rooms"); err != nil {
		return err
	}
	if org.Tables, err = parseULIDs(f.tables, "tables"); err != nil {
		return err
	}
	if org.Roads, err = parseULIDs(f.roads, "roads"); err != nil {
		return err
	}
	return nil
}

func scanOrganizationRow(row pgx.Row) (*world.Organization, error) {
	var org world.Organization
	var f organizationScanFields

	err := row.Scan(
		&f.idStr, &org.Name, &org.Description, &org.IsPublic, &org.IsActive, &f.createdByStr,
		&f.members, &f.buildings, &f.rooms, &f.tables, &f.roads, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := f.apply(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

func scanOrganizations(rows pgx.Rows) ([]*world.Organization, error) {
	orgs := make([]*world.Organization, 0)
	for rows.Next() {
		var org world.Organization
		var f organizationScanFields
		if err := rows.Scan(
			&f.idStr, &org.Name, &org.Description, &org.IsPublic, &org.IsActive, &f.createdByStr,
			&f.members, &f.buildings, &f.rooms, &f.tables, &f.roads, &org.CreatedAt, &org.UpdatedAt,
		); err != nil {
			return nil, oops.With("operation", "scan organization").Wrap(err)
		}
		if err := f.apply(&org); err != nil {
			return nil, err
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate organizations").Wrap(err)
	}
	return orgs, nil
}

// Compile-time interface check.
var _ world.OrganizationRepository = (*OrganizationRepository)(nil)
