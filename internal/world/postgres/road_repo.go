// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package postgres

import (
	"context"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridtown/gridtown/internal/world"
)

// RoadRepository implements world.RoadRepository using PostgreSQL.
//
// Paths are stored as JSONB because roads are read in bulk and never
// queried by waypoint.
type RoadRepository struct {
	pool poolIface
}

// NewRoadRepository creates a new RoadRepository.
func NewRoadRepository(pool poolIface) *RoadRepository {
	return &RoadRepository{pool: pool}
}

// Create persists a new road.
func (r *RoadRepository) Create(ctx context.Context, road *world.Road) error {
	path, err := json.Marshal(road.Path)
	if err != nil {
		return oops.Code("ROAD_CREATE_FAILED").With("id", road.ID.String()).Wrap(err)
	}
	flow, err := json.Marshal(road.Flow)
	if err != nil {
		return oops.Code("ROAD_CREATE_FAILED").With("id", road.ID.String()).Wrap(err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO roads (id, organization_id, from_building, to_building,
			path, flow, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, road.ID.String(), road.OrganizationID.String(),
		road.FromBuilding.String(), road.ToBuilding.String(),
		path, flow, road.IsActive, road.CreatedAt)
	if err != nil {
		return oops.Code("ROAD_CREATE_FAILED").With("id", road.ID.String()).Wrap(err)
	}
	return nil
}

// ListByOrganization returns active roads of an organization.
func (r *RoadRepository) ListByOrganization(ctx context.Context, orgID ulid.ULID) ([]*world.Road, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, from_building, to_building, path, flow, is_active, created_at
		FROM roads WHERE organization_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, orgID.String())
	if err != nil {
		return nil, oops.Code("ROAD_QUERY_FAILED").With("organization_id", orgID.String()).Wrap(err)
	}
	defer rows.Close()

	roads := make([]*world.Road, 0)
	for rows.Next() {
		var road world.Road
		var idStr, orgStr, fromStr, toStr string
		var path, flow []byte
		if err := rows.Scan(&idStr, &orgStr, &fromStr, &toStr, &path, &flow, &road.IsActive, &road.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan road").Wrap(err)
		}
		if road.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse road id").With("id", idStr).Wrap(err)
		}
		if road.OrganizationID, err = ulid.Parse(orgStr); err != nil {
			return nil, oops.With("operation", "parse organization_id").With("organization_id", orgStr).Wrap(err)
		}
		if road.FromBuilding, err = ulid.Parse(fromStr); err != nil {
			return nil, oops.With("operation", "parse from_building").With("from_building", fromStr).Wrap(err)
		}
		if road.ToBuilding, err = ulid.Parse(toStr); err != nil {
			return nil, oops.With("operation", "parse to_building").With("to_building", toStr).Wrap(err)
		}
		if err := json.Unmarshal(path, &road.Path); err != nil {
			return nil, oops.With("operation", "parse road path").Wrap(err)
		}
		if err := json.Unmarshal(flow, &road.Flow); err != nil {
			return nil, oops.With("operation", "parse road flow").Wrap(err)
		}
		roads = append(roads, &road)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate roads").Wrap(err)
	}
	return roads, nil
}

// Compile-time interface check.
var _ world.RoadRepository = (*RoadRepository)(nil)
