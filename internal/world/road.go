// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// FlowDirection describes how message traffic animates along a road.
type FlowDirection string

// Flow directions.
const (
	FlowBidirectional FlowDirection = "bidirectional"
	FlowFromTo        FlowDirection = "from_to"
	FlowToFrom        FlowDirection = "to_from"
)

// ErrInvalidFlowDirection indicates an unrecognized flow direction.
var ErrInvalidFlowDirection = errors.New("invalid flow direction")

// Validate checks that the flow direction is a recognized value.
func (f FlowDirection) Validate() error {
	switch f {
	case FlowBidirectional, FlowFromTo, FlowToFrom:
		return nil
	default:
		return ErrInvalidFlowDirection
	}
}

// MessageFlow is decorative traffic metadata for a road.
type MessageFlow struct {
	Direction FlowDirection `json:"direction"`
	Animating bool          `json:"animating"`
}

// Road is a decorative, read-mostly connection between two buildings.
type Road struct {
	ID             ulid.ULID
	OrganizationID ulid.ULID
	FromBuilding   ulid.ULID
	ToBuilding     ulid.ULID
	Path           []Position
	Flow           MessageFlow
	IsActive       bool
	CreatedAt      time.Time
}

// NewRoad creates a validated Road with a generated ID.
func NewRoad(orgID, from, to ulid.ULID, path []Position, flow MessageFlow) (*Road, error) {
	r := &Road{
		ID:             ulid.Make(),
		OrganizationID: orgID,
		FromBuilding:   from,
		ToBuilding:     to,
		Path:           path,
		Flow:           flow,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks endpoints and flow metadata.
func (r *Road) Validate() error {
	if r.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if r.FromBuilding.IsZero() || r.ToBuilding.IsZero() {
		return &ValidationError{Field: "endpoints", Message: "both endpoints are required"}
	}
	if r.FromBuilding == r.ToBuilding {
		return &ValidationError{Field: "endpoints", Message: "cannot connect a building to itself"}
	}
	if len(r.Path) < 2 {
		return &ValidationError{Field: "path", Message: "must contain at least two points"}
	}
	return r.Flow.Direction.Validate()
}
