// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrGetHero(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a hero at the spawn position", func(t *testing.T) {
		f := newFixture()
		userID := ulid.Make()

		hero, err := f.svc.CreateOrGetHero(ctx, "hero:"+userID.String(), userID, "Ada")
		require.NoError(t, err)
		assert.Equal(t, Position{X: 400, Y: 300}, hero.Position)
		assert.True(t, hero.IsActive)
	})

	t.Run("returns the existing hero on repeat calls", func(t *testing.T) {
		f := newFixture()
		userID := ulid.Make()

		first, err := f.svc.CreateOrGetHero(ctx, "hero:x", userID, "Ada")
		require.NoError(t, err)
		second, err := f.svc.CreateOrGetHero(ctx, "hero:x", userID, "Someone Else")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Ada", second.Name)
	})

	t.Run("joins the default organization", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Founder")
		org := f.seedOrg("Gridtown", owner.ID)
		f.setDefaultOrg(org.ID)
		userID := ulid.Make()

		hero, err := f.svc.CreateOrGetHero(ctx, "hero:x", userID, "Ada")
		require.NoError(t, err)
		assert.Contains(t, hero.Organizations, org.ID)
		require.NotNil(t, hero.CurrentOrganization)
		assert.Equal(t, org.ID, *hero.CurrentOrganization)
		assert.True(t, org.HasMember(hero.ID))
	})

	t.Run("returns the winner after losing a create race", func(t *testing.T) {
		f := newFixture()
		userID := ulid.Make()
		winner, err := NewHero(userID, "Winner", Position{})
		require.NoError(t, err)
		f.heroes.items[winner.ID] = winner

		// The initial lookup misses, the insert hits the unique index,
		// and the retry lookup finds the winner's row.
		f.heroes.getByUserMisses = 1
		hero, err := f.svc.CreateOrGetHero(ctx, "hero:x", userID, "Loser")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, hero.ID)
		assert.Equal(t, "Winner", hero.Name)
	})

	t.Run("denies without create permission", func(t *testing.T) {
		f := newFixture()
		f.access.deny("create", "hero:*")
		_, err := f.svc.CreateOrGetHero(ctx, "hero:x", ulid.Make(), "Ada")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestUpdateHeroPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("moves an existing hero", func(t *testing.T) {
		f := newFixture()
		hero := f.seedHero("Ada")

		moved, err := f.svc.UpdateHeroPosition(ctx, "hero:"+hero.ID.String(), hero.UserID, Position{X: 7, Y: 9})
		require.NoError(t, err)
		assert.Equal(t, Position{X: 7, Y: 9}, moved.Position)
		assert.False(t, moved.LastSeen.IsZero())
	})

	t.Run("creates the hero when the user has none", func(t *testing.T) {
		f := newFixture()
		userID := ulid.Make()

		hero, err := f.svc.UpdateHeroPosition(ctx, "hero:x", userID, Position{X: 7, Y: 9})
		require.NoError(t, err)
		// Upsert spawns at the configured position, not the requested one.
		assert.Equal(t, Position{X: 400, Y: 300}, hero.Position)
		assert.Equal(t, userID, hero.UserID)
	})

	t.Run("emits a move event when the hero is in a room", func(t *testing.T) {
		f := newFixture()
		hero := f.seedHero("Ada")
		roomID := ulid.Make()
		hero.CurrentRoom = &roomID

		_, err := f.svc.UpdateHeroPosition(ctx, "hero:x", hero.UserID, Position{X: 1, Y: 1})
		require.NoError(t, err)
		require.Len(t, f.emitter.events, 1)
		assert.Equal(t, "room:"+roomID.String(), f.emitter.events[0].stream)
		assert.Equal(t, "move", f.emitter.events[0].eventType)
	})

	t.Run("denies moving another user's hero", func(t *testing.T) {
		f := newFixture()
		hero := f.seedHero("Ada")
		f.access.deny("write", "hero:"+hero.ID.String())

		_, err := f.svc.UpdateHeroPosition(ctx, "hero:other", hero.UserID, Position{X: 1, Y: 1})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("writes both sides of the occupancy relation", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)

		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID))
		assert.True(t, room.HasOccupant(owner.ID))
		require.NotNil(t, owner.CurrentRoom)
		assert.Equal(t, room.ID, *owner.CurrentRoom)
		assert.Equal(t, b.ID, *owner.CurrentBuilding)
		assert.Equal(t, org.ID, *owner.CurrentOrganization)
		assert.Equal(t, 1, owner.Activity.RoomVisits)
	})

	t.Run("is idempotent for the current room", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)

		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID))
		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID))
		assert.Len(t, room.Occupants, 1)
		assert.Equal(t, 1, owner.Activity.RoomVisits)
	})

	t.Run("vacates the previous room", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		first := f.seedRoom(org, b, 10)
		second := f.seedRoom(org, b, 10)

		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", first.ID, owner.ID))
		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", second.ID, owner.ID))
		assert.False(t, first.HasOccupant(owner.ID))
		assert.True(t, second.HasOccupant(owner.ID))
		assert.Equal(t, second.ID, *owner.CurrentRoom)
	})

	t.Run("restores the previous room when the move fails", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		first := f.seedRoom(org, b, 10)
		second := f.seedRoom(org, b, 10)
		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", first.ID, owner.ID))

		boom := errors.New("room write failed")
		f.rooms.updateHook = func(r *Room) error {
			if r.ID == second.ID {
				return boom
			}
			return nil
		}

		err := f.svc.JoinRoom(ctx, "hero:x", second.ID, owner.ID)
		require.ErrorIs(t, err, boom)
		var partial *PartialWriteError
		assert.False(t, errors.As(err, &partial), "restored move should surface the plain step error")
		assert.True(t, first.HasOccupant(owner.ID), "hero must keep its seat in the previous room")
	})

	t.Run("reports a partial write when the previous room cannot be restored", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		first := f.seedRoom(org, b, 10)
		second := f.seedRoom(org, b, 10)
		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", first.ID, owner.ID))

		// The vacate write lands, then every later room write fails,
		// including the compensation that would re-seat the hero.
		updates := 0
		f.rooms.updateHook = func(*Room) error {
			updates++
			if updates > 1 {
				return errors.New("room write failed")
			}
			return nil
		}

		err := f.svc.JoinRoom(ctx, "hero:x", second.ID, owner.ID)
		var partial *PartialWriteError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, "join room", partial.Op)
		assert.Contains(t, partial.Completed, "vacate room")
	})

	t.Run("rejects a full room", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		other := f.seedHero("Brin")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 1)

		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID))
		err := f.svc.JoinRoom(ctx, "hero:x", room.ID, other.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Nil(t, other.CurrentRoom)
	})

	t.Run("denies without write permission on the room", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		f.access.deny("write", "room:"+room.ID.String())

		err := f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestJoinTable(t *testing.T) {
	ctx := context.Background()

	seatHeroInRoom := func(f *fixture, hero *Hero, room *Room) {
		require.NoError(t, f.svc.JoinRoom(context.Background(), "hero:x", room.ID, hero.ID))
	}

	t.Run("seats the hero at the table", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		table := f.seedTable(org, b, room, 4)
		seatHeroInRoom(f, owner, room)

		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", table.ID, owner.ID))
		assert.True(t, table.HasOccupant(owner.ID))
		require.NotNil(t, owner.CurrentTable)
		assert.Equal(t, table.ID, *owner.CurrentTable)
		assert.Equal(t, 1, owner.Activity.TableVisits)
	})

	t.Run("requires the hero to be in the table's room", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		table := f.seedTable(org, b, room, 4)

		err := f.svc.JoinTable(ctx, "hero:x", table.ID, owner.ID)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "room", validationErr.Field)
	})

	t.Run("moves between tables in the same room", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		first := f.seedTable(org, b, room, 4)
		second := f.seedTable(org, b, room, 4)
		seatHeroInRoom(f, owner, room)

		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", first.ID, owner.ID))
		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", second.ID, owner.ID))
		assert.False(t, first.HasOccupant(owner.ID))
		assert.True(t, second.HasOccupant(owner.ID))
		assert.Equal(t, second.ID, *owner.CurrentTable)
	})

	t.Run("keeps the previous seat when the move fails", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		first := f.seedTable(org, b, room, 4)
		second := f.seedTable(org, b, room, 4)
		seatHeroInRoom(f, owner, room)
		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", first.ID, owner.ID))

		boom := errors.New("table write failed")
		f.tables.updateHook = func(tb *Table) error {
			if tb.ID == second.ID {
				return boom
			}
			return nil
		}

		err := f.svc.JoinTable(ctx, "hero:x", second.ID, owner.ID)
		require.ErrorIs(t, err, boom)
		assert.True(t, first.HasOccupant(owner.ID), "hero must keep its previous seat")
	})

	t.Run("rejects a full table", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		other := f.seedHero("Brin")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		table := f.seedTable(org, b, room, 1)
		seatHeroInRoom(f, owner, room)
		seatHeroInRoom(f, other, room)

		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", table.ID, owner.ID))
		err := f.svc.JoinTable(ctx, "hero:x", table.ID, other.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Nil(t, other.CurrentTable)
	})
}

func TestLeaveCurrentLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("clears both sides of room and table occupancy", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		table := f.seedTable(org, b, room, 4)
		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID))
		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", table.ID, owner.ID))

		left, err := f.svc.LeaveCurrentLocation(ctx, "hero:x", owner.ID)
		require.NoError(t, err)
		assert.Nil(t, left.CurrentTable)
		assert.Nil(t, left.CurrentRoom)
		assert.Nil(t, left.CurrentBuilding)
		assert.False(t, room.HasOccupant(owner.ID))
		assert.False(t, table.HasOccupant(owner.ID))
	})

	t.Run("restores occupancy when the hero write fails", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		org := f.seedOrg("Acme", owner.ID)
		b := f.seedBuilding(org)
		room := f.seedRoom(org, b, 10)
		table := f.seedTable(org, b, room, 4)
		require.NoError(t, f.svc.JoinRoom(ctx, "hero:x", room.ID, owner.ID))
		require.NoError(t, f.svc.JoinTable(ctx, "hero:x", table.ID, owner.ID))

		boom := errors.New("hero write failed")
		f.heroes.updateErr = boom

		_, err := f.svc.LeaveCurrentLocation(ctx, "hero:x", owner.ID)
		require.ErrorIs(t, err, boom)
		var partial *PartialWriteError
		assert.False(t, errors.As(err, &partial))
		assert.True(t, room.HasOccupant(owner.ID), "room occupancy must be restored")
		assert.True(t, table.HasOccupant(owner.ID), "table occupancy must be restored")
	})

	t.Run("drops a dangling room reference", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")
		ghost := ulid.Make()
		owner.CurrentRoom = &ghost

		left, err := f.svc.LeaveCurrentLocation(ctx, "hero:x", owner.ID)
		require.NoError(t, err)
		assert.Nil(t, left.CurrentRoom)
	})

	t.Run("is a no-op for a hero with no location", func(t *testing.T) {
		f := newFixture()
		owner := f.seedHero("Ada")

		left, err := f.svc.LeaveCurrentLocation(ctx, "hero:x", owner.ID)
		require.NoError(t, err)
		assert.Nil(t, left.CurrentRoom)
	})
}
