// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CreateOrGetHero returns the hero belonging to a user, creating one at
// the spawn position if none exists. Creation is idempotent: a
// concurrent create losing the unique-index race falls back to fetching
// the winner's row, so the caller always gets the same hero.
func (s *Service) CreateOrGetHero(ctx context.Context, subject string, userID ulid.ULID, name string) (*Hero, error) {
	if err := s.checkCreateAccess(ctx, subject, KindHero); err != nil {
		return nil, err
	}

	hero, err := s.hero.GetByUser(ctx, userID)
	if err == nil {
		return hero, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Wrapf(err, "look up hero for user %s", userID)
	}

	hero, err = NewHero(userID, name, s.spawn)
	if err != nil {
		return nil, err
	}
	if s.defaultOrg != nil {
		hero.JoinOrganization(*s.defaultOrg)
		orgRef := *s.defaultOrg
		hero.CurrentOrganization = &orgRef
	}

	if err := s.hero.Create(ctx, hero); err != nil {
		// Lost the race against another create for the same user.
		if errors.Is(err, ErrAlreadyExists) {
			return s.hero.GetByUser(ctx, userID)
		}
		return nil, oops.Wrapf(err, "create hero for user %s", userID)
	}

	if s.defaultOrg != nil {
		if err := s.registerDefaultMembership(ctx, hero); err != nil {
			// The hero exists and is usable; membership bookkeeping is
			// retried on the next organization interaction.
			slog.Warn("default organization membership not registered",
				"hero_id", hero.ID.String(), "error", err)
		}
	}

	recordPresenceOp("create_hero", StatusSuccess)
	return hero, nil
}

// registerDefaultMembership adds a fresh hero to the default
// organization's member list.
func (s *Service) registerDefaultMembership(ctx context.Context, hero *Hero) error {
	org, err := s.orgRepo.Get(ctx, *s.defaultOrg)
	if err != nil {
		return oops.Wrapf(err, "load default organization")
	}
	if !org.AddMember(hero.ID) {
		return nil
	}
	return s.orgRepo.Update(ctx, org)
}

// GetHero retrieves a hero by ID after checking read authorization.
func (s *Service) GetHero(ctx context.Context, subject string, id ulid.ULID) (*Hero, error) {
	if err := s.checkAccess(ctx, subject, "read", KindHero, id); err != nil {
		return nil, err
	}
	hero, err := s.hero.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get hero %s", id)
	}
	return hero, nil
}

// GetHeroByUser retrieves the hero belonging to a user.
func (s *Service) GetHeroByUser(ctx context.Context, subject string, userID ulid.ULID) (*Hero, error) {
	if !s.access.Check(ctx, subject, "read", "hero:*") {
		return nil, ErrPermissionDenied
	}
	hero, err := s.hero.GetByUser(ctx, userID)
	if err != nil {
		return nil, oops.Wrapf(err, "get hero for user %s", userID)
	}
	return hero, nil
}

// UpdateHeroPosition moves a user's hero on the grid, creating the hero
// at that position if the user has none yet (upsert semantics), and
// refreshes LastSeen.
func (s *Service) UpdateHeroPosition(ctx context.Context, subject string, userID ulid.ULID, pos Position) (*Hero, error) {
	hero, err := s.hero.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return s.CreateOrGetHero(ctx, subject, userID, "Hero "+userID.String()[:8])
	}
	if err != nil {
		return nil, oops.Wrapf(err, "look up hero for user %s", userID)
	}

	if err := s.checkAccess(ctx, subject, "write", KindHero, hero.ID); err != nil {
		recordPresenceOp("move", StatusPermissionDenied)
		return nil, err
	}

	hero.MoveTo(pos)
	if err := s.hero.Update(ctx, hero); err != nil {
		recordPresenceOp("move", StatusError)
		return nil, oops.Wrapf(err, "update hero %s position", hero.ID)
	}

	if err := EmitMoveEvent(ctx, s.emitter, hero); err != nil {
		slog.Debug("move event not emitted", "hero_id", hero.ID.String(), "error", err)
	}
	recordPresenceOp("move", StatusSuccess)
	return hero, nil
}

// JoinRoom places a hero in a room, leaving any previous room or table
// first. Both sides are written: the room's occupant list and the
// hero's current-location fields. Room capacity is enforced; a capacity
// of zero is unlimited.
func (s *Service) JoinRoom(ctx context.Context, subject string, roomID, heroID ulid.ULID) error {
	if err := s.checkAccess(ctx, subject, "write", KindRoom, roomID); err != nil {
		recordPresenceOp("join_room", StatusPermissionDenied)
		return err
	}

	room, err := s.room.Get(ctx, roomID)
	if err != nil {
		recordPresenceOp("join_room", StatusNotFound)
		return oops.Wrapf(err, "load room %s", roomID)
	}
	hero, err := s.hero.Get(ctx, heroID)
	if err != nil {
		recordPresenceOp("join_room", StatusNotFound)
		return oops.Wrapf(err, "load hero %s", heroID)
	}

	if room.HasOccupant(hero.ID) && hero.CurrentRoom != nil && *hero.CurrentRoom == room.ID {
		recordPresenceOp("join_room", StatusSuccess)
		return nil
	}

	if err := room.AddOccupant(hero.ID); err != nil {
		recordPresenceOp("join_room", StatusCapacityExceeded)
		CapacityRejections.WithLabelValues(KindRoom.String()).Inc()
		return oops.With("room", roomID.String()).With("capacity", room.Capacity).Wrap(err)
	}

	// Vacating the previous location runs inside the same saga as the
	// join writes, so a failed move restores the old occupancy instead
	// of stranding the hero between rooms.
	sg := newSaga("join room")
	left, err := s.stageVacate(ctx, sg, hero, &room.ID)
	if err != nil {
		recordPresenceOp("join_room", StatusError)
		return err
	}
	hero.EnterRoom(room)

	sg.step("update room", func(ctx context.Context) error {
		return s.room.Update(ctx, room)
	}, func(ctx context.Context) error {
		room.RemoveOccupant(hero.ID)
		return s.room.Update(ctx, room)
	}).
		step("update hero", func(ctx context.Context) error {
			return s.hero.Update(ctx, hero)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		recordPresenceOp("join_room", StatusError)
		return err
	}

	s.emitDepartures(ctx, hero, left)
	if err := EmitPresenceEvent(ctx, s.emitter, "join", hero.ID, KindRoom, room.ID); err != nil {
		slog.Debug("join event not emitted", "room_id", room.ID.String(), "error", err)
	}
	recordPresenceOp("join_room", StatusSuccess)
	return nil
}

// JoinTable seats a hero at a table in the room the hero already
// occupies. Capacity is enforced; joining a table in another room
// fails rather than leaving the hero in an inconsistent half-moved
// state.
func (s *Service) JoinTable(ctx context.Context, subject string, tableID, heroID ulid.ULID) error {
	if err := s.checkAccess(ctx, subject, "write", KindTable, tableID); err != nil {
		recordPresenceOp("join_table", StatusPermissionDenied)
		return err
	}

	table, err := s.table.Get(ctx, tableID)
	if err != nil {
		recordPresenceOp("join_table", StatusNotFound)
		return oops.Wrapf(err, "load table %s", tableID)
	}
	hero, err := s.hero.Get(ctx, heroID)
	if err != nil {
		recordPresenceOp("join_table", StatusNotFound)
		return oops.Wrapf(err, "load hero %s", heroID)
	}

	if hero.CurrentRoom == nil || *hero.CurrentRoom != table.RoomID {
		recordPresenceOp("join_table", StatusError)
		return &ValidationError{Field: "room", Message: "hero must be in the table's room"}
	}

	if table.HasOccupant(hero.ID) {
		recordPresenceOp("join_table", StatusSuccess)
		return nil
	}

	if err := table.AddOccupant(hero.ID); err != nil {
		recordPresenceOp("join_table", StatusCapacityExceeded)
		CapacityRejections.WithLabelValues(KindTable.String()).Inc()
		return oops.With("table", tableID.String()).With("capacity", table.Capacity).Wrap(err)
	}

	// Standing up from a previous table in the same room is part of the
	// saga, so a failed seat change restores the old seat.
	sg := newSaga("join table")
	var left []departure
	if hero.CurrentTable != nil && *hero.CurrentTable != table.ID {
		dep, err := s.stageLeaveTable(ctx, sg, hero)
		if err != nil {
			recordPresenceOp("join_table", StatusError)
			return err
		}
		if dep != nil {
			left = append(left, *dep)
		}
	}
	hero.SitAt(table.ID)

	sg.step("update table", func(ctx context.Context) error {
		return s.table.Update(ctx, table)
	}, func(ctx context.Context) error {
		table.RemoveOccupant(hero.ID)
		return s.table.Update(ctx, table)
	}).
		step("update hero", func(ctx context.Context) error {
			return s.hero.Update(ctx, hero)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		recordPresenceOp("join_table", StatusError)
		return err
	}

	s.emitDepartures(ctx, hero, left)
	if err := EmitPresenceEvent(ctx, s.emitter, "join", hero.ID, KindTable, table.ID); err != nil {
		slog.Debug("join event not emitted", "table_id", table.ID.String(), "error", err)
	}
	recordPresenceOp("join_table", StatusSuccess)
	return nil
}

// LeaveCurrentLocation removes a hero from its table and room, clears
// the hero's location fields, and refreshes LastSeen. Both the hero and
// the containers are written.
func (s *Service) LeaveCurrentLocation(ctx context.Context, subject string, heroID ulid.ULID) (*Hero, error) {
	hero, err := s.hero.Get(ctx, heroID)
	if err != nil {
		recordPresenceOp("leave", StatusNotFound)
		return nil, oops.Wrapf(err, "load hero %s", heroID)
	}
	if err := s.checkAccess(ctx, subject, "write", KindHero, hero.ID); err != nil {
		recordPresenceOp("leave", StatusPermissionDenied)
		return nil, err
	}

	sg := newSaga("leave location")
	left, err := s.stageVacate(ctx, sg, hero, nil)
	if err != nil {
		recordPresenceOp("leave", StatusError)
		return nil, err
	}
	hero.LeaveLocations()
	sg.step("update hero", func(ctx context.Context) error {
		return s.hero.Update(ctx, hero)
	}, nil)

	if err := sg.execute(ctx); err != nil {
		recordPresenceOp("leave", StatusError)
		return nil, err
	}

	s.emitDepartures(ctx, hero, left)
	recordPresenceOp("leave", StatusSuccess)
	return hero, nil
}

// departure is a container the hero left, kept for event emission after
// the writes commit.
type departure struct {
	kind Kind
	id   ulid.ULID
}

// stageLeaveTable stages the hero's departure from its current table:
// the saga step writes the shortened occupant list, the compensation
// seats the hero again. The hero-side reference is cleared in memory;
// the caller's hero write persists it.
func (s *Service) stageLeaveTable(ctx context.Context, sg *saga, hero *Hero) (*departure, error) {
	if hero.CurrentTable == nil {
		return nil, nil
	}
	table, err := s.table.Get(ctx, *hero.CurrentTable)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dangling reference; drop it.
			hero.CurrentTable = nil
			return nil, nil
		}
		return nil, oops.Wrapf(err, "load table %s", *hero.CurrentTable)
	}
	hero.CurrentTable = nil
	if !table.RemoveOccupant(hero.ID) {
		return nil, nil
	}
	sg.step("vacate table", func(ctx context.Context) error {
		return s.table.Update(ctx, table)
	}, func(ctx context.Context) error {
		if err := table.AddOccupant(hero.ID); err != nil {
			return err
		}
		return s.table.Update(ctx, table)
	})
	return &departure{kind: KindTable, id: table.ID}, nil
}

// stageVacate stages the hero's departure from its current table and
// room on the saga. except names a room whose occupant list the caller
// is about to write itself, so it must not be staged twice.
func (s *Service) stageVacate(ctx context.Context, sg *saga, hero *Hero, except *ulid.ULID) ([]departure, error) {
	var left []departure
	dep, err := s.stageLeaveTable(ctx, sg, hero)
	if err != nil {
		return nil, err
	}
	if dep != nil {
		left = append(left, *dep)
	}
	if hero.CurrentRoom == nil || (except != nil && *hero.CurrentRoom == *except) {
		return left, nil
	}
	room, err := s.room.Get(ctx, *hero.CurrentRoom)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			hero.CurrentRoom = nil
			return left, nil
		}
		return nil, oops.Wrapf(err, "load room %s", *hero.CurrentRoom)
	}
	if room.RemoveOccupant(hero.ID) {
		sg.step("vacate room", func(ctx context.Context) error {
			return s.room.Update(ctx, room)
		}, func(ctx context.Context) error {
			if err := room.AddOccupant(hero.ID); err != nil {
				return err
			}
			return s.room.Update(ctx, room)
		})
		left = append(left, departure{kind: KindRoom, id: room.ID})
	}
	return left, nil
}

// emitDepartures emits leave events for committed departures.
func (s *Service) emitDepartures(ctx context.Context, hero *Hero, left []departure) {
	for _, dep := range left {
		if err := EmitPresenceEvent(ctx, s.emitter, "leave", hero.ID, dep.kind, dep.id); err != nil {
			slog.Debug("leave event not emitted",
				"kind", dep.kind.String(), "id", dep.id.String(), "error", err)
		}
	}
}
