// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// BuildingType categorizes a building for rendering and seeding.
type BuildingType string

// Building types.
const (
	BuildingTypeOffice    BuildingType = "office"
	BuildingTypeFactory   BuildingType = "factory"
	BuildingTypeLogistics BuildingType = "logistics"
	BuildingTypeSupport   BuildingType = "support"
)

// String returns the string representation of the building type.
func (t BuildingType) String() string {
	return string(t)
}

// Building is a structure inside an organization that contains rooms.
type Building struct {
	ID             ulid.ULID
	Name           string
	Description    string
	OrganizationID ulid.ULID
	Type           BuildingType
	Position       Position
	Size           Extent
	IsPublic       bool
	IsActive       bool
	CreatedBy      ulid.ULID
	Rooms          []ulid.ULID
	Tables         []ulid.ULID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewBuilding creates a validated Building with a generated ID.
func NewBuilding(name string, orgID, createdBy ulid.ULID, buildingType BuildingType, pos Position, size Extent) (*Building, error) {
	b := &Building{
		ID:             ulid.Make(),
		Name:           name,
		OrganizationID: orgID,
		Type:           buildingType,
		Position:       pos,
		Size:           size,
		IsActive:       true,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the building has required fields.
func (b *Building) Validate() error {
	if b.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if b.OrganizationID.IsZero() {
		return &ValidationError{Field: "organization", Message: "cannot be zero"}
	}
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	return ValidateDescription(b.Description)
}

// AddRoom registers a room in the containment list. Idempotent.
func (b *Building) AddRoom(id ulid.ULID) bool {
	var changed bool
	b.Rooms, changed = appendID(b.Rooms, id)
	return changed
}

// RemoveRoom drops a room from the containment list.
func (b *Building) RemoveRoom(id ulid.ULID) bool {
	var changed bool
	b.Rooms, changed = removeID(b.Rooms, id)
	return changed
}

// AddTable registers a table in the containment list. Idempotent.
func (b *Building) AddTable(id ulid.ULID) bool {
	var changed bool
	b.Tables, changed = appendID(b.Tables, id)
	return changed
}

// RemoveTable drops a table from the containment list.
func (b *Building) RemoveTable(id ulid.ULID) bool {
	var changed bool
	b.Tables, changed = removeID(b.Tables, id)
	return changed
}
