// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Room is a space inside a building where heroes gather at tables.
// Capacity zero means unlimited occupancy.
type Room struct {
	ID             ulid.ULID
	Name           string
	Description    string
	OrganizationID ulid.ULID
	BuildingID     ulid.ULID
	Position       Position
	Size           Extent
	Capacity       int
	IsPublic       bool
	IsActive       bool
	CreatedBy      ulid.ULID
	Tables         []ulid.ULID
	Occupants      []ulid.ULID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewRoom creates a validated Room with a generated ID.
func NewRoom(name string, orgID, buildingID, createdBy ulid.ULID, capacity int) (*Room, error) {
	r := &Room{
		ID:             ulid.Make(),
		Name:           name,
		OrganizationID: orgID,
		BuildingID:     buildingID,
		Capacity:       capacity,
		IsActive:       true,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that the room has required fields.
func (r *Room) Validate() error {
	if r.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if r.OrganizationID.IsZero() {
		return &ValidationError{Field: "organization", Message: "cannot be zero"}
	}
	if r.BuildingID.IsZero() {
		return &ValidationError{Field: "building", Message: "cannot be zero"}
	}
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	return ValidateCapacity(r.Capacity)
}

// IsFull reports whether the room has reached its occupancy limit.
// A capacity of zero never fills up.
func (r *Room) IsFull() bool {
	return r.Capacity > 0 && len(r.Occupants) >= r.Capacity
}

// AddOccupant seats a hero in the room. Idempotent.
// Returns ErrCapacityExceeded if the room is full and the hero is not
// already present.
func (r *Room) AddOccupant(heroID ulid.ULID) error {
	if containsID(r.Occupants, heroID) {
		return nil
	}
	if r.IsFull() {
		return ErrCapacityExceeded
	}
	r.Occupants = append(r.Occupants, heroID)
	return nil
}

// RemoveOccupant removes a hero from the room.
// Returns true if the occupant list changed.
func (r *Room) RemoveOccupant(heroID ulid.ULID) bool {
	var changed bool
	r.Occupants, changed = removeID(r.Occupants, heroID)
	return changed
}

// HasOccupant reports whether the hero is in the room.
func (r *Room) HasOccupant(heroID ulid.ULID) bool {
	return containsID(r.Occupants, heroID)
}

// AddTable registers a table in the containment list. Idempotent.
func (r *Room) AddTable(id ulid.ULID) bool {
	var changed bool
	r.Tables, changed = appendID(r.Tables, id)
	return changed
}

// RemoveTable drops a table from the containment list.
func (r *Room) RemoveTable(id ulid.ULID) bool {
	var changed bool
	r.Tables, changed = removeID(r.Tables, id)
	return changed
}
