// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTableCapacity is used when a table is created without an
// explicit seat limit.
const DefaultTableCapacity = 4

// Table is a gathering spot inside a room. Seats are limited; a dialog
// opened at the table is referenced through CurrentThread.
type Table struct {
	ID             ulid.ULID
	Name           string
	OrganizationID ulid.ULID
	BuildingID     ulid.ULID
	RoomID         ulid.ULID
	Position       Position
	Size           Extent
	Capacity       int
	IsPublic       bool
	IsActive       bool
	CreatedBy      ulid.ULID
	Occupants      []ulid.ULID
	CurrentThread  *ulid.ULID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTable creates a validated Table with a generated ID.
// A non-positive capacity falls back to DefaultTableCapacity.
func NewTable(name string, orgID, buildingID, roomID, createdBy ulid.ULID, capacity int) (*Table, error) {
	if capacity <= 0 {
		capacity = DefaultTableCapacity
	}
	t := &Table{
		ID:             ulid.Make(),
		Name:           name,
		OrganizationID: orgID,
		BuildingID:     buildingID,
		RoomID:         roomID,
		Capacity:       capacity,
		IsActive:       true,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the table has required fields.
func (t *Table) Validate() error {
	if t.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if t.OrganizationID.IsZero() {
		return &ValidationError{Field: "organization", Message: "cannot be zero"}
	}
	if t.BuildingID.IsZero() {
		return &ValidationError{Field: "building", Message: "cannot be zero"}
	}
	if t.RoomID.IsZero() {
		return &ValidationError{Field: "room", Message: "cannot be zero"}
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.Capacity < 1 {
		return &ValidationError{Field: "capacity", Message: "must be at least 1"}
	}
	return ValidateCapacity(t.Capacity)
}

// IsFull reports whether every seat is taken.
func (t *Table) IsFull() bool {
	return len(t.Occupants) >= t.Capacity
}

// AddOccupant seats a hero at the table. Idempotent.
// Returns ErrCapacityExceeded if the table is full and the hero is not
// already seated.
func (t *Table) AddOccupant(heroID ulid.ULID) error {
	if containsID(t.Occupants, heroID) {
		return nil
	}
	if t.IsFull() {
		return ErrCapacityExceeded
	}
	t.Occupants = append(t.Occupants, heroID)
	return nil
}

// RemoveOccupant removes a hero from the table.
// Returns true if the occupant list changed.
func (t *Table) RemoveOccupant(heroID ulid.ULID) bool {
	var changed bool
	t.Occupants, changed = removeID(t.Occupants, heroID)
	return changed
}

// HasOccupant reports whether the hero is seated at the table.
func (t *Table) HasOccupant(heroID ulid.ULID) bool {
	return containsID(t.Occupants, heroID)
}
