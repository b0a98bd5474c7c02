// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

// Package world contains the hero-world domain types and logic.
//
// The world is a spatial containment hierarchy, largest to smallest:
// Organization → Building → Room → Table. Heroes are user avatars that
// move through the hierarchy; Dialogs are conversation sessions bound to
// a table, a room, or a private pairing.
//
// For creating domain objects, prefer the constructor functions (NewX)
// over direct struct initialization. Constructors ensure validation and
// proper initialization of required fields.
package world

import (
	"errors"

	"github.com/oklog/ulid/v2"
)

// Kind identifies an entity kind in the world hierarchy.
type Kind string

// Entity kinds.
const (
	KindOrganization Kind = "organization"
	KindBuilding     Kind = "building"
	KindRoom         Kind = "room"
	KindTable        Kind = "table"
	KindHero         Kind = "hero"
	KindDialog       Kind = "dialog"
	KindRoad         Kind = "road"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ErrInvalidKind indicates an unrecognized entity kind.
var ErrInvalidKind = errors.New("invalid entity kind")

// Validate checks that the kind is a recognized value.
func (k Kind) Validate() error {
	switch k {
	case KindOrganization, KindBuilding, KindRoom, KindTable, KindHero, KindDialog, KindRoad:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Position is a coordinate in the world grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Extent is the footprint of an entity on the world grid, in tiles.
type Extent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// appendID appends id to ids if not already present.
// Returns the (possibly unchanged) slice and whether it changed.
func appendID(ids []ulid.ULID, id ulid.ULID) ([]ulid.ULID, bool) {
	for _, existing := range ids {
		if existing == id {
			return ids, false
		}
	}
	return append(ids, id), true
}

// removeID removes id from ids if present.
// Returns the (possibly unchanged) slice and whether it changed.
func removeID(ids []ulid.ULID, id ulid.ULID) ([]ulid.ULID, bool) {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

// containsID reports whether ids contains id.
func containsID(ids []ulid.ULID, id ulid.ULID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
