// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// threadName builds the display name for a dialog's backing thread,
// e.g. "Table Discussion".
func threadName(dialogType DialogType) string {
	runes := []rune(dialogType.String())
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes) + " Discussion"
}

// CreateDialog opens a conversation session for a set of heroes.
// The backing thread is created first, then the dialog referencing it;
// if the dialog write fails the thread is deactivated so no orphaned
// live thread remains.
func (s *Service) CreateDialog(ctx context.Context, subject string, dialogType DialogType, participants []ulid.ULID, tableID, roomID *ulid.ULID) (*Dialog, error) {
	if err := s.checkCreateAccess(ctx, subject, KindDialog); err != nil {
		return nil, err
	}
	if err := dialogType.Validate(); err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, &ValidationError{Field: "participants", Message: "cannot be empty"}
	}

	// Anchor must exist before any write happens.
	switch dialogType {
	case DialogTypeTable:
		if tableID == nil {
			return nil, &ValidationError{Field: "table", Message: "required for table dialogs"}
		}
		if _, err := s.table.Get(ctx, *tableID); err != nil {
			return nil, oops.Wrapf(err, "load table %s", *tableID)
		}
	case DialogTypeRoom:
		if roomID == nil {
			return nil, &ValidationError{Field: "room", Message: "required for room dialogs"}
		}
		if _, err := s.room.Get(ctx, *roomID); err != nil {
			return nil, oops.Wrapf(err, "load room %s", *roomID)
		}
	case DialogTypePrivate:
		// No anchor.
	}

	thread := &Thread{
		ID:           ulid.Make(),
		Name:         threadName(dialogType),
		Participants: participants,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	var dialog *Dialog
	sg := newSaga("create dialog").
		step("create thread", func(ctx context.Context) error {
			return s.thread.Create(ctx, thread)
		}, func(ctx context.Context) error {
			return s.thread.Deactivate(ctx, thread.ID)
		}).
		step("create dialog", func(ctx context.Context) error {
			d, err := NewDialog(dialogType, participants, tableID, roomID, thread.ID)
			if err != nil {
				return err
			}
			if err := s.dialog.Create(ctx, d); err != nil {
				return err
			}
			dialog = d
			return nil
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}

	// Table dialogs become the table's active conversation.
	if dialogType == DialogTypeTable {
		if table, err := s.table.Get(ctx, *tableID); err == nil {
			threadRef := thread.ID
			table.CurrentThread = &threadRef
			if err := s.table.Update(ctx, table); err != nil {
				return nil, oops.Wrapf(err, "record thread on table %s", table.ID)
			}
		}
	}

	DialogCreations.WithLabelValues(dialogType.String()).Inc()
	return dialog, nil
}

// GetDialog retrieves a dialog after checking read authorization.
func (s *Service) GetDialog(ctx context.Context, subject string, id ulid.ULID) (*Dialog, error) {
	if err := s.checkAccess(ctx, subject, "read", KindDialog, id); err != nil {
		return nil, err
	}
	d, err := s.dialog.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get dialog %s", id)
	}
	return d, nil
}

// GetThread retrieves a dialog's backing thread.
func (s *Service) GetThread(ctx context.Context, subject string, id ulid.ULID) (*Thread, error) {
	if !s.access.Check(ctx, subject, "read", "thread:"+id.String()) {
		return nil, ErrPermissionDenied
	}
	t, err := s.thread.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get thread %s", id)
	}
	return t, nil
}

// ListDialogsForHero returns active dialogs a hero participates in.
func (s *Service) ListDialogsForHero(ctx context.Context, subject string, heroID ulid.ULID) ([]*Dialog, error) {
	if err := s.checkAccess(ctx, subject, "read", KindHero, heroID); err != nil {
		return nil, err
	}
	dialogs, err := s.dialog.ListForHero(ctx, heroID)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return dialogs, nil
}
