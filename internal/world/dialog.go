// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// DialogType identifies where a dialog session is anchored.
type DialogType string

// Dialog types.
const (
	DialogTypeTable   DialogType = "table"
	DialogTypeRoom    DialogType = "room"
	DialogTypePrivate DialogType = "private"
)

// String returns the string representation of the dialog type.
func (t DialogType) String() string {
	return string(t)
}

// ErrInvalidDialogType indicates an unrecognized dialog type.
var ErrInvalidDialogType = errors.New("invalid dialog type")

// Validate checks that the dialog type is a recognized value.
func (t DialogType) Validate() error {
	switch t {
	case DialogTypeTable, DialogTypeRoom, DialogTypePrivate:
		return nil
	default:
		return ErrInvalidDialogType
	}
}

// Dialog is an ephemeral conversation session between heroes, anchored
// to a table, a room, or nothing (private). Messages live in the backing
// Thread, not here.
type Dialog struct {
	ID           ulid.ULID
	Type         DialogType
	Participants []ulid.ULID
	TableID      *ulid.ULID
	RoomID       *ulid.ULID
	ThreadID     ulid.ULID
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewDialog creates a validated Dialog with a generated ID.
// The anchor must match the type: table dialogs need a table, room
// dialogs a room, private dialogs neither.
func NewDialog(dialogType DialogType, participants []ulid.ULID, tableID, roomID *ulid.ULID, threadID ulid.ULID) (*Dialog, error) {
	d := &Dialog{
		ID:           ulid.Make(),
		Type:         dialogType,
		Participants: participants,
		TableID:      tableID,
		RoomID:       roomID,
		ThreadID:     threadID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks type, anchor, participants, and thread reference.
func (d *Dialog) Validate() error {
	if d.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := d.Type.Validate(); err != nil {
		return err
	}
	if len(d.Participants) == 0 {
		return &ValidationError{Field: "participants", Message: "cannot be empty"}
	}
	if d.ThreadID.IsZero() {
		return &ValidationError{Field: "thread", Message: "cannot be zero"}
	}
	switch d.Type {
	case DialogTypeTable:
		if d.TableID == nil {
			return &ValidationError{Field: "table", Message: "required for table dialogs"}
		}
		if d.RoomID != nil {
			return &ValidationError{Field: "room", Message: "not allowed for table dialogs"}
		}
	case DialogTypeRoom:
		if d.RoomID == nil {
			return &ValidationError{Field: "room", Message: "required for room dialogs"}
		}
		if d.TableID != nil {
			return &ValidationError{Field: "table", Message: "not allowed for room dialogs"}
		}
	case DialogTypePrivate:
		if d.TableID != nil || d.RoomID != nil {
			return &ValidationError{Field: "type", Message: "private dialogs cannot reference a location"}
		}
	}
	return nil
}

// HasParticipant reports whether the hero takes part in the dialog.
func (d *Dialog) HasParticipant(heroID ulid.ULID) bool {
	return containsID(d.Participants, heroID)
}

// Thread is the external messaging collaborator's conversation record.
// Gridtown only creates threads and hands their ids to dialogs; message
// content stays with the messaging service.
type Thread struct {
	ID           ulid.ULID
	Name         string
	Participants []ulid.ULID
	IsActive     bool
	CreatedAt    time.Time
}
