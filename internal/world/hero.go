// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Activity accumulates a hero's visit counters per location kind.
type Activity struct {
	OrganizationVisits int `json:"organization_visits"`
	BuildingVisits     int `json:"building_visits"`
	RoomVisits         int `json:"room_visits"`
	TableVisits        int `json:"table_visits"`
	DialogVisits       int `json:"dialog_visits"`
}

// Hero is a user's avatar in the world. Exactly one hero exists per user.
//
// CurrentTable, CurrentRoom, and CurrentBuilding mirror the occupant
// lists on the containers; the presence operations keep both sides in
// step so neither can reference the other without a back-reference.
type Hero struct {
	ID                  ulid.ULID
	UserID              ulid.ULID
	Name                string
	Position            Position
	Organizations       []ulid.ULID
	CurrentOrganization *ulid.ULID
	CurrentBuilding     *ulid.ULID
	CurrentRoom         *ulid.ULID
	CurrentTable        *ulid.ULID
	IsMoving            bool
	IsActive            bool
	Activity            Activity
	LastSeen            time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewHero creates a validated Hero with a generated ID at the given
// spawn position.
func NewHero(userID ulid.ULID, name string, spawn Position) (*Hero, error) {
	now := time.Now().UTC()
	h := &Hero{
		ID:        ulid.Make(),
		UserID:    userID,
		Name:      name,
		Position:  spawn,
		IsActive:  true,
		LastSeen:  now,
		CreatedAt: now,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks that the hero has required fields.
func (h *Hero) Validate() error {
	if h.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if h.UserID.IsZero() {
		return &ValidationError{Field: "user", Message: "cannot be zero"}
	}
	if err := ValidateName(h.Name); err != nil {
		return err
	}
	return nil
}

// MoveTo updates the hero's grid position and refreshes LastSeen.
func (h *Hero) MoveTo(pos Position) {
	h.Position = pos
	h.LastSeen = time.Now().UTC()
}

// EnterRoom records the hero's new room, building, and organization.
func (h *Hero) EnterRoom(room *Room) {
	roomID := room.ID
	buildingID := room.BuildingID
	orgID := room.OrganizationID
	h.CurrentRoom = &roomID
	h.CurrentBuilding = &buildingID
	h.CurrentOrganization = &orgID
	h.Activity.RoomVisits++
	h.LastSeen = time.Now().UTC()
}

// SitAt records the hero's current table.
func (h *Hero) SitAt(tableID ulid.ULID) {
	h.CurrentTable = &tableID
	h.Activity.TableVisits++
	h.LastSeen = time.Now().UTC()
}

// LeaveLocations clears every location reference and refreshes LastSeen.
func (h *Hero) LeaveLocations() {
	h.CurrentTable = nil
	h.CurrentRoom = nil
	h.CurrentBuilding = nil
	h.LastSeen = time.Now().UTC()
}

// JoinOrganization records membership on the hero side. Idempotent.
func (h *Hero) JoinOrganization(orgID ulid.ULID) bool {
	var changed bool
	h.Organizations, changed = appendID(h.Organizations, orgID)
	if changed {
		h.Activity.OrganizationVisits++
	}
	return changed
}
