// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultLimit is used when ListOptions.Limit is not positive.
const DefaultLimit = 100

// OrganizationRepository manages organization persistence.
type OrganizationRepository interface {
	// Get retrieves an organization by ID.
	Get(ctx context.Context, id ulid.ULID) (*Organization, error)

	// Create persists a new organization.
	Create(ctx context.Context, org *Organization) error

	// Update modifies an existing organization.
	Update(ctx context.Context, org *Organization) error

	// ListActive returns active organizations in creation order.
	ListActive(ctx context.Context, opts ListOptions) ([]*Organization, error)
}

// BuildingRepository manages building persistence.
type BuildingRepository interface {
	// Get retrieves a building by ID.
	Get(ctx context.Context, id ulid.ULID) (*Building, error)

	// Create persists a new building.
	Create(ctx context.Context, b *Building) error

	// Update modifies an existing building.
	Update(ctx context.Context, b *Building) error

	// ListByOrganization returns active buildings of an organization in
	// creation order.
	ListByOrganization(ctx context.Context, orgID ulid.ULID) ([]*Building, error)
}

// RoomRepository manages room persistence.
type RoomRepository interface {
	// Get retrieves a room by ID.
	Get(ctx context.Context, id ulid.ULID) (*Room, error)

	// Create persists a new room.
	Create(ctx context.Context, r *Room) error

	// Update modifies an existing room.
	Update(ctx context.Context, r *Room) error

	// ListByBuilding returns active rooms of a building in creation order.
	ListByBuilding(ctx context.Context, buildingID ulid.ULID) ([]*Room, error)
}

// TableRepository manages table persistence.
type TableRepository interface {
	// Get retrieves a table by ID.
	Get(ctx context.Context, id ulid.ULID) (*Table, error)

	// Create persists a new table.
	Create(ctx context.Context, t *Table) error

	// Update modifies an existing table.
	Update(ctx context.Context, t *Table) error

	// ListByRoom returns active tables of a room in creation order.
	ListByRoom(ctx context.Context, roomID ulid.ULID) ([]*Table, error)
}

// HeroRepository manages hero persistence.
type HeroRepository interface {
	// Get retrieves a hero by ID.
	Get(ctx context.Context, id ulid.ULID) (*Hero, error)

	// GetByUser retrieves the hero belonging to a user.
	// Returns ErrNotFound if the user has no hero yet.
	GetByUser(ctx context.Context, userID ulid.ULID) (*Hero, error)

	// Create persists a new hero.
	// Returns ErrAlreadyExists if the user already has a hero.
	Create(ctx context.Context, h *Hero) error

	// Update modifies an existing hero.
	Update(ctx context.Context, h *Hero) error

	// Search returns heroes whose name matches the query,
	// case-insensitively, ordered by name.
	Search(ctx context.Context, query string, opts ListOptions) ([]*Hero, error)
}

// DialogRepository manages dialog persistence.
type DialogRepository interface {
	// Get retrieves a dialog by ID.
	Get(ctx context.Context, id ulid.ULID) (*Dialog, error)

	// Create persists a new dialog.
	Create(ctx context.Context, d *Dialog) error

	// Update modifies an existing dialog.
	Update(ctx context.Context, d *Dialog) error

	// ListForHero returns active dialogs a hero participates in.
	ListForHero(ctx context.Context, heroID ulid.ULID) ([]*Dialog, error)
}

// RoadRepository manages road persistence.
type RoadRepository interface {
	// Create persists a new road.
	Create(ctx context.Context, r *Road) error

	// ListByOrganization returns active roads of an organization.
	ListByOrganization(ctx context.Context, orgID ulid.ULID) ([]*Road, error)
}

// ThreadRepository is the messaging collaborator. Gridtown creates a
// thread per dialog and hands the id over; messages never pass through
// this service.
type ThreadRepository interface {
	// Create persists a new thread.
	Create(ctx context.Context, t *Thread) error

	// Get retrieves a thread by ID.
	Get(ctx context.Context, id ulid.ULID) (*Thread, error)

	// Deactivate marks a thread inactive. Used as the compensation when
	// dialog creation fails after the thread was written.
	Deactivate(ctx context.Context, id ulid.ULID) error
}
