// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Organization is the root of the containment hierarchy. It owns
// buildings, rooms, and tables, and tracks its member heroes.
type Organization struct {
	ID          ulid.ULID
	Name        string
	Description string
	IsPublic    bool
	IsActive    bool
	CreatedBy   ulid.ULID // owning hero
	Members     []ulid.ULID
	Buildings   []ulid.ULID
	Rooms       []ulid.ULID
	Tables      []ulid.ULID
	Roads       []ulid.ULID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrganization creates a validated Organization with a generated ID.
// The creating hero is its first member.
func NewOrganization(name, description string, isPublic bool, createdBy ulid.ULID) (*Organization, error) {
	org := &Organization{
		ID:          ulid.Make(),
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		IsActive:    true,
		CreatedBy:   createdBy,
		Members:     []ulid.ULID{createdBy},
		CreatedAt:   time.Now().UTC(),
	}
	if err := org.Validate(); err != nil {
		return nil, err
	}
	return org, nil
}

// Validate checks that the organization has required fields.
func (o *Organization) Validate() error {
	if o.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if o.CreatedBy.IsZero() {
		return &ValidationError{Field: "created_by", Message: "cannot be zero"}
	}
	if err := ValidateName(o.Name); err != nil {
		return err
	}
	return ValidateDescription(o.Description)
}

// AddMember records a hero as a member. Idempotent.
// Returns true if the membership list changed.
func (o *Organization) AddMember(heroID ulid.ULID) bool {
	var changed bool
	o.Members, changed = appendID(o.Members, heroID)
	return changed
}

// RemoveMember drops a hero from the membership list.
// Returns true if the membership list changed.
func (o *Organization) RemoveMember(heroID ulid.ULID) bool {
	var changed bool
	o.Members, changed = removeID(o.Members, heroID)
	return changed
}

// HasMember reports whether the hero is a member.
func (o *Organization) HasMember(heroID ulid.ULID) bool {
	return containsID(o.Members, heroID)
}

// AddBuilding registers a building in the containment list. Idempotent.
func (o *Organization) AddBuilding(id ulid.ULID) bool {
	var changed bool
	o.Buildings, changed = appendID(o.Buildings, id)
	return changed
}

// RemoveBuilding drops a building from the containment list.
func (o *Organization) RemoveBuilding(id ulid.ULID) bool {
	var changed bool
	o.Buildings, changed = removeID(o.Buildings, id)
	return changed
}

// AddRoom registers a room in the containment list. Idempotent.
func (o *Organization) AddRoom(id ulid.ULID) bool {
	var changed bool
	o.Rooms, changed = appendID(o.Rooms, id)
	return changed
}

// RemoveRoom drops a room from the containment list.
func (o *Organization) RemoveRoom(id ulid.ULID) bool {
	var changed bool
	o.Rooms, changed = removeID(o.Rooms, id)
	return changed
}

// AddTable registers a table in the containment list. Idempotent.
func (o *Organization) AddTable(id ulid.ULID) bool {
	var changed bool
	o.Tables, changed = appendID(o.Tables, id)
	return changed
}

// RemoveTable drops a table from the containment list.
func (o *Organization) RemoveTable(id ulid.ULID) bool {
	var changed bool
	o.Tables, changed = removeID(o.Tables, id)
	return changed
}

// AddRoad registers a road in the containment list. Idempotent.
func (o *Organization) AddRoad(id ulid.ULID) bool {
	var changed bool
	o.Roads, changed = appendID(o.Roads, id)
	return changed
}
