// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DeactivateEntity soft-deletes an entity: the row keeps existing with
// IsActive=false, and every ancestor containment list referencing the
// id drops it. Deactivation does not cascade to children; a room inside
// a deactivated building stays active but unreachable through normal
// navigation.
//
// Heroes cannot be deactivated; there is no deletion path for avatars.
func (s *Service) DeactivateEntity(ctx context.Context, subject string, kind Kind, id ulid.ULID) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	if kind == KindHero {
		return &ValidationError{Field: "kind", Message: "heroes cannot be deactivated"}
	}
	if err := s.checkAccess(ctx, subject, "delete", kind, id); err != nil {
		return err
	}

	switch kind {
	case KindOrganization:
		return s.deactivateOrganization(ctx, id)
	case KindBuilding:
		return s.deactivateBuilding(ctx, id)
	case KindRoom:
		return s.deactivateRoom(ctx, id)
	case KindTable:
		return s.deactivateTable(ctx, id)
	case KindDialog:
		return s.deactivateDialog(ctx, id)
	default:
		return &ValidationError{Field: "kind", Message: "cannot deactivate " + kind.String()}
	}
}

func (s *Service) deactivateOrganization(ctx context.Context, id ulid.ULID) error {
	org, err := s.orgRepo.Get(ctx, id)
	if err != nil {
		return oops.Wrapf(err, "load organization %s", id)
	}
	org.IsActive = false
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return oops.Wrapf(err, "deactivate organization %s", id)
	}
	return nil
}

func (s *Service) deactivateBuilding(ctx context.Context, id ulid.ULID) error {
	b, err := s.building.Get(ctx, id)
	if err != nil {
		return oops.Wrapf(err, "load building %s", id)
	}
	org, err := s.orgRepo.Get(ctx, b.OrganizationID)
	if err != nil {
		return oops.Wrapf(err, "load organization %s", b.OrganizationID)
	}

	b.IsActive = false
	sg := newSaga("deactivate building").
		step("deactivate building", func(ctx context.Context) error {
			return s.building.Update(ctx, b)
		}, func(ctx context.Context) error {
			b.IsActive = true
			return s.building.Update(ctx, b)
		}).
		step("unregister from organization", func(ctx context.Context) error {
			if !org.RemoveBuilding(b.ID) {
				return nil
			}
			return s.orgRepo.Update(ctx, org)
		}, nil)
	return sg.execute(ctx)
}

func (s *Service) deactivateRoom(ctx context.Context, id ulid.ULID) error {
	room, err := s.room.Get(ctx, id)
	if err != nil {
		return oops.Wrapf(err, "load room %s", id)
	}
	building, err := s.building.Get(ctx, room.BuildingID)
	if err != nil {
		return oops.Wrapf(err, "load building %s", room.BuildingID)
	}
	org, err := s.orgRepo.Get(ctx, room.OrganizationID)
	if err != nil {
		return oops.Wrapf(err, "load organization %s", room.OrganizationID)
	}

	room.IsActive = false
	sg := newSaga("deactivate room").
		step("deactivate room", func(ctx context.Context) error {
			return s.room.Update(ctx, room)
		}, func(ctx context.Context) error {
			room.IsActive = true
			return s.room.Update(ctx, room)
		}).
		step("unregister from building", func(ctx context.Context) error {
			if !building.RemoveRoom(room.ID) {
				return nil
			}
			return s.building.Update(ctx, building)
		}, func(ctx context.Context) error {
			building.AddRoom(room.ID)
			return s.building.Update(ctx, building)
		}).
		step("unregister from organization", func(ctx context.Context) error {
			if !org.RemoveRoom(room.ID) {
				return nil
			}
			return s.orgRepo.Update(ctx, org)
		}, nil)
	return sg.execute(ctx)
}

func (s *Service) deactivateTable(ctx context.Context, id ulid.ULID) error {
	table, err := s.table.Get(ctx, id)
	if err != nil {
		return oops.Wrapf(err, "load table %s", id)
	}
	room, err := s.room.Get(ctx, table.RoomID)
	if err != nil {
		return oops.Wrapf(err, "load room %s", table.RoomID)
	}
	building, err := s.building.Get(ctx, table.BuildingID)
	if err != nil {
		return oops.Wrapf(err, "load building %s", table.BuildingID)
	}
	org, err := s.orgRepo.Get(ctx, table.OrganizationID)
	if err != nil {
		return oops.Wrapf(err, "load organization %s", table.OrganizationID)
	}

	table.IsActive = false
	sg := newSaga("deactivate table").
		step("deactivate table", func(ctx context.Context) error {
			return s.table.Update(ctx, table)
		}, func(ctx context.Context) error {
			table.IsActive = true
			return s.table.Update(ctx, table)
		}).
		step("unregister from room", func(ctx context.Context) error {
			if !room.RemoveTable(table.ID) {
				return nil
			}
			return s.room.Update(ctx, room)
		}, func(ctx context.Context) error {
			room.AddTable(table.ID)
			return s.room.Update(ctx, room)
		}).
		step("unregister from building", func(ctx context.Context) error {
			if !building.RemoveTable(table.ID) {
				return nil
			}
			return s.building.Update(ctx, building)
		}, func(ctx context.Context) error {
			building.AddTable(table.ID)
			return s.building.Update(ctx, building)
		}).
		step("unregister from organization", func(ctx context.Context) error {
			if !org.RemoveTable(table.ID) {
				return nil
			}
			return s.orgRepo.Update(ctx, org)
		}, nil)
	return sg.execute(ctx)
}

func (s *Service) deactivateDialog(ctx context.Context, id ulid.ULID) error {
	d, err := s.dialog.Get(ctx, id)
	if err != nil {
		return oops.Wrapf(err, "load dialog %s", id)
	}
	d.IsActive = false
	if err := s.dialog.Update(ctx, d); err != nil {
		return oops.Wrapf(err, "deactivate dialog %s", id)
	}
	return nil
}
