// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package server

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gridtown/gridtown/internal/world"
)

// Wire representations of domain entities. IDs travel as ULID strings.

type organizationDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by"`
	Members     []string  `json:"members"`
	Buildings   []string  `json:"buildings"`
	Rooms       []string  `json:"rooms"`
	Tables      []string  `json:"tables"`
	Roads       []string  `json:"roads"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type buildingDTO struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	OrganizationID string         `json:"organization_id"`
	Type           string         `json:"building_type"`
	Position       world.Position `json:"position"`
	Size           world.Extent   `json:"size"`
	IsPublic       bool           `json:"is_public"`
	IsActive       bool           `json:"is_active"`
	CreatedBy      string         `json:"created_by"`
	Rooms          []string       `json:"rooms"`
	Tables         []string       `json:"tables"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type roomDTO struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	OrganizationID string         `json:"organization_id"`
	BuildingID     string         `json:"building_id"`
	Position       world.Position `json:"position"`
	Size           world.Extent   `json:"size"`
	Capacity       int            `json:"capacity"`
	IsPublic       bool           `json:"is_public"`
	IsActive       bool           `json:"is_active"`
	CreatedBy      string         `json:"created_by"`
	Tables         []string       `json:"tables"`
	Occupants      []string       `json:"occupants"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type tableDTO struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	OrganizationID string         `json:"organization_id"`
	BuildingID     string         `json:"building_id"`
	RoomID         string         `json:"room_id"`
	Position       world.Position `json:"position"`
	Size           world.Extent   `json:"size"`
	Capacity       int            `json:"capacity"`
	IsPublic       bool           `json:"is_public"`
	IsActive       bool           `json:"is_active"`
	CreatedBy      string         `json:"created_by"`
	Occupants      []string       `json:"occupants"`
	CurrentThread  *string        `json:"current_thread,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type heroDTO struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	Name                string         `json:"name"`
	Position            world.Position `json:"position"`
	Organizations       []string       `json:"organizations"`
	CurrentOrganization *string        `json:"current_organization,omitempty"`
	CurrentBuilding     *string        `json:"current_building,omitempty"`
	CurrentRoom         *string        `json:"current_room,omitempty"`
	CurrentTable        *string        `json:"current_table,omitempty"`
	IsMoving            bool           `json:"is_moving"`
	IsActive            bool           `json:"is_active"`
	Activity            world.Activity `json:"activity"`
	LastSeen            time.Time      `json:"last_seen"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

type dialogDTO struct {
	ID           string    `json:"id"`
	Type         string    `json:"dialog_type"`
	Participants []string  `json:"participants"`
	TableID      *string   `json:"table_id,omitempty"`
	RoomID       *string   `json:"room_id,omitempty"`
	ThreadID     string    `json:"thread_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type threadDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Participants []string  `json:"participants"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type roadDTO struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	FromBuilding   string            `json:"from_building"`
	ToBuilding     string            `json:"to_building"`
	Path           []world.Position  `json:"path"`
	Flow           world.MessageFlow `json:"flow"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"created_at"`
}

func idStrings(ids []ulid.ULID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func idStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toOrganizationDTO(o *world.Organization) organizationDTO {
	return organizationDTO{
		ID:          o.ID.String(),
		Name:        o.Name,
		Description: o.Description,
		IsPublic:    o.IsPublic,
		IsActive:    o.IsActive,
		CreatedBy:   o.CreatedBy.String(),
		Members:     idStrings(o.Members),
		Buildings:   idStrings(o.Buildings),
		Rooms:       idStrings(o.Rooms),
		Tables:      idStrings(o.Tables),
		Roads:       idStrings(o.Roads),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toBuildingDTO(b *world.Building) buildingDTO {
	return buildingDTO{
		ID:             b.ID.String(),
		Name:           b.Name,
		Description:    b.Description,
		OrganizationID: b.OrganizationID.String(),
		Type:           b.Type.String(),
		Position:       b.Position,
		Size:           b.Size,
		IsPublic:       b.IsPublic,
		IsActive:       b.IsActive,
		CreatedBy:      b.CreatedBy.String(),
		Rooms:          idStrings(b.Rooms),
		Tables:         idStrings(b.Tables),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func toRoomDTO(r *world.Room) roomDTO {
	return roomDTO{
		ID:             r.ID.String(),
		Name:           r.Name,
		Description:    r.Description,
		OrganizationID: r.OrganizationID.String(),
		BuildingID:     r.BuildingID.String(),
		Position:       r.Position,
		Size:           r.Size,
		Capacity:       r.Capacity,
		IsPublic:       r.IsPublic,
		IsActive:       r.IsActive,
		CreatedBy:      r.CreatedBy.String(),
		Tables:         idStrings(r.Tables),
		Occupants:      idStrings(r.Occupants),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toTableDTO(t *world.Table) tableDTO {
	return tableDTO{
		ID:             t.ID.String(),
		Name:           t.Name,
		OrganizationID: t.OrganizationID.String(),
		BuildingID:     t.BuildingID.String(),
		RoomID:         t.RoomID.String(),
		Position:       t.Position,
		Size:           t.Size,
		Capacity:       t.Capacity,
		IsPublic:       t.IsPublic,
		IsActive:       t.IsActive,
		CreatedBy:      t.CreatedBy.String(),
		Occupants:      idStrings(t.Occupants),
		CurrentThread:  idStringPtr(t.CurrentThread),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toHeroDTO(h *world.Hero) heroDTO {
	return heroDTO{
		ID:                  h.ID.String(),
		UserID:              h.UserID.String(),
		Name:                h.Name,
		Position:            h.Position,
		Organizations:       idStrings(h.Organizations),
		CurrentOrganization: idStringPtr(h.CurrentOrganization),
		CurrentBuilding:     idStringPtr(h.CurrentBuilding),
		CurrentRoom:         idStringPtr(h.CurrentRoom),
		CurrentTable:        idStringPtr(h.CurrentTable),
		IsMoving:            h.IsMoving,
		IsActive:            h.IsActive,
		Activity:            h.Activity,
		LastSeen:            h.LastSeen,
		CreatedAt:           h.CreatedAt,
		UpdatedAt:           h.UpdatedAt,
	}
}

func toDialogDTO(d *world.Dialog) dialogDTO {
	return dialogDTO{
		ID:           d.ID.String(),
		Type:         d.Type.String(),
		Participants: idStrings(d.Participants),
		TableID:      idStringPtr(d.TableID),
		RoomID:       idStringPtr(d.RoomID),
		ThreadID:     d.ThreadID.String(),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toThreadDTO(t *world.Thread) threadDTO {
	return threadDTO{
		ID:           t.ID.String(),
		Name:         t.Name,
		Participants: idStrings(t.Participants),
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
	}
}

func toRoadDTO(r *world.Road) roadDTO {
	return roadDTO{
		ID:             r.ID.String(),
		OrganizationID: r.OrganizationID.String(),
		FromBuilding:   r.FromBuilding.String(),
		ToBuilding:     r.ToBuilding.String(),
		Path:           r.Path,
		Flow:           r.Flow,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
	}
}

func toOrganizationDTOs(orgs []*world.Organization) []organizationDTO {
	out := make([]organizationDTO, len(orgs))
	for i, o := range orgs {
		out[i] = toOrganizationDTO(o)
	}
	return out
}

func toBuildingDTOs(bs []*world.Building) []buildingDTO {
	out := make([]buildingDTO, len(bs))
	for i, b := range bs {
		out[i] = toBuildingDTO(b)
	}
	return out
}

func toRoomDTOs(rs []*world.Room) []roomDTO {
	out := make([]roomDTO, len(rs))
	for i, r := range rs {
		out[i] = toRoomDTO(r)
	}
	return out
}

func toTableDTOs(ts []*world.Table) []tableDTO {
	out := make([]tableDTO, len(ts))
	for i, t := range ts {
		out[i] = toTableDTO(t)
	}
	return out
}

func toHeroDTOs(hs []*world.Hero) []heroDTO {
	out := make([]heroDTO, len(hs))
	for i, h := range hs {
		out[i] = toHeroDTO(h)
	}
	return out
}

func toDialogDTOs(ds []*world.Dialog) []dialogDTO {
	out := make([]dialogDTO, len(ds))
	for i, d := range ds {
		out[i] = toDialogDTO(d)
	}
	return out
}

func toRoadDTOs(rs []*world.Road) []roadDTO {
	out := make([]roadDTO, len(rs))
	for i, r := range rs {
		out[i] = toRoadDTO(r)
	}
	return out
}
