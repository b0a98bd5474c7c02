// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AccessControl defines the interface for authorization checks.
// Subjects are per-request principals ("hero:<id>" or "system:<name>");
// the check is evaluated fresh each call, never cached across requests.
type AccessControl interface {
	Check(ctx context.Context, subject, action, resource string) bool
}

// ServiceConfig holds dependencies for the world Service.
type ServiceConfig struct {
	OrganizationRepo OrganizationRepository
	BuildingRepo     BuildingRepository
	RoomRepo         RoomRepository
	TableRepo        TableRepository
	HeroRepo         HeroRepository
	DialogRepo       DialogRepository
	RoadRepo         RoadRepository
	ThreadRepo       ThreadRepository
	AccessControl    AccessControl
	Emitter          EventEmitter // optional

	// DefaultOrganization receives newly created heroes.
	DefaultOrganization *ulid.ULID

	// SpawnPosition is where new heroes appear.
	SpawnPosition Position
}

// Service provides authorized access to world operations.
// All operations check authorization before touching repositories, and
// multi-entity writes run as sagas so partial failures are compensated
// or reported as PartialWriteError.
type Service struct {
	orgRepo    OrganizationRepository
	building   BuildingRepository
	room       RoomRepository
	table      TableRepository
	hero       HeroRepository
	dialog     DialogRepository
	road       RoadRepository
	thread     ThreadRepository
	access     AccessControl
	emitter    EventEmitter
	defaultOrg *ulid.ULID
	spawn      Position
}

// NewService creates a new Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		orgRepo:    cfg.OrganizationRepo,
		building:   cfg.BuildingRepo,
		room:       cfg.RoomRepo,
		table:      cfg.TableRepo,
		hero:       cfg.HeroRepo,
		dialog:     cfg.DialogRepo,
		road:       cfg.RoadRepo,
		thread:     cfg.ThreadRepo,
		access:     cfg.AccessControl,
		emitter:    cfg.Emitter,
		defaultOrg: cfg.DefaultOrganization,
		spawn:      cfg.SpawnPosition,
	}
}

// checkAccess evaluates an authorization rule for a single resource.
func (s *Service) checkAccess(ctx context.Context, subject, action string, kind Kind, id ulid.ULID) error {
	resource := fmt.Sprintf("%s:%s", kind, id)
	if !s.access.Check(ctx, subject, action, resource) {
		return ErrPermissionDenied
	}
	return nil
}

// checkCreateAccess evaluates an authorization rule for creating any
// entity of a kind.
func (s *Service) checkCreateAccess(ctx context.Context, subject string, kind Kind) error {
	if !s.access.Check(ctx, subject, "create", kind.String()+":*") {
		return ErrPermissionDenied
	}
	return nil
}

// GetOrganization retrieves an organization after checking read authorization.
func (s *Service) GetOrganization(ctx context.Context, subject string, id ulid.ULID) (*Organization, error) {
	if err := s.checkAccess(ctx, subject, "read", KindOrganization, id); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get organization %s", id)
	}
	return org, nil
}

// ListOrganizations returns active organizations visible to the subject.
func (s *Service) ListOrganizations(ctx context.Context, subject string, opts ListOptions) ([]*Organization, error) {
	if !s.access.Check(ctx, subject, "read", "organization:*") {
		return nil, ErrPermissionDenied
	}
	orgs, err := s.orgRepo.ListActive(ctx, opts)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return orgs, nil
}

// CreateOrganization creates a new organization owned by a hero. The
// owner becomes the first member, and the hero record gains the
// membership reference.
func (s *Service) CreateOrganization(ctx context.Context, subject string, name, description string, isPublic bool, ownerHeroID ulid.ULID) (*Organization, error) {
	if err := s.checkCreateAccess(ctx, subject, KindOrganization); err != nil {
		return nil, err
	}

	owner, err := s.hero.Get(ctx, ownerHeroID)
	if err != nil {
		return nil, oops.Wrapf(err, "load owner hero %s", ownerHeroID)
	}

	org, err := NewOrganization(name, description, isPublic, owner.ID)
	if err != nil {
		return nil, err
	}

	sg := newSaga("create organization").
		step("create organization", func(ctx context.Context) error {
			return s.orgRepo.Create(ctx, org)
		}, func(ctx context.Context) error {
			org.IsActive = false
			return s.orgRepo.Update(ctx, org)
		}).
		step("register membership on hero", func(ctx context.Context) error {
			if !owner.JoinOrganization(org.ID) {
				return nil
			}
			return s.hero.Update(ctx, owner)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}
	return org, nil
}

// AddOrganizationMember adds a hero to an organization's member list and
// points the hero's current organization at it. Idempotent on the
// membership side; re-adding an existing member is a validation error,
// matching the join endpoint this models.
func (s *Service) AddOrganizationMember(ctx context.Context, subject string, orgID, heroID ulid.ULID) (*Organization, error) {
	if err := s.checkAccess(ctx, subject, "write", KindOrganization, orgID); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Get(ctx, orgID)
	if err != nil {
		return nil, oops.Wrapf(err, "load organization %s", orgID)
	}
	hero, err := s.hero.Get(ctx, heroID)
	if err != nil {
		return nil, oops.Wrapf(err, "load hero %s", heroID)
	}
	if org.HasMember(hero.ID) {
		return nil, &ValidationError{Field: "hero", Message: "already a member"}
	}

	org.AddMember(hero.ID)
	hero.JoinOrganization(org.ID)
	orgRef := org.ID
	hero.CurrentOrganization = &orgRef

	sg := newSaga("add organization member").
		step("update organization", func(ctx context.Context) error {
			return s.orgRepo.Update(ctx, org)
		}, func(ctx context.Context) error {
			org.RemoveMember(hero.ID)
			return s.orgRepo.Update(ctx, org)
		}).
		step("update hero", func(ctx context.Context) error {
			return s.hero.Update(ctx, hero)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}
	return org, nil
}

// GetBuilding retrieves a building after checking read authorization.
func (s *Service) GetBuilding(ctx context.Context, subject string, id ulid.ULID) (*Building, error) {
	if err := s.checkAccess(ctx, subject, "read", KindBuilding, id); err != nil {
		return nil, err
	}
	b, err := s.building.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get building %s", id)
	}
	return b, nil
}

// ListBuildings returns active buildings of an organization.
func (s *Service) ListBuildings(ctx context.Context, subject string, orgID ulid.ULID) ([]*Building, error) {
	if err := s.checkAccess(ctx, subject, "read", KindOrganization, orgID); err != nil {
		return nil, err
	}
	buildings, err := s.building.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return buildings, nil
}

// CreateBuilding creates a building inside an organization and registers
// it in the organization's containment list.
func (s *Service) CreateBuilding(ctx context.Context, subject string, name string, orgID ulid.ULID, buildingType BuildingType, pos Position, size Extent, createdBy ulid.ULID) (*Building, error) {
	if err := s.checkCreateAccess(ctx, subject, KindBuilding); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Get(ctx, orgID)
	if err != nil {
		return nil, oops.Wrapf(err, "load organization %s", orgID)
	}

	b, err := NewBuilding(name, org.ID, createdBy, buildingType, pos, size)
	if err != nil {
		return nil, err
	}

	sg := newSaga("create building").
		step("create building", func(ctx context.Context) error {
			return s.building.Create(ctx, b)
		}, func(ctx context.Context) error {
			b.IsActive = false
			return s.building.Update(ctx, b)
		}).
		step("register on organization", func(ctx context.Context) error {
			org.AddBuilding(b.ID)
			return s.orgRepo.Update(ctx, org)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// GetRoom retrieves a room after checking read authorization.
func (s *Service) GetRoom(ctx context.Context, subject string, id ulid.ULID) (*Room, error) {
	if err := s.checkAccess(ctx, subject, "read", KindRoom, id); err != nil {
		return nil, err
	}
	r, err := s.room.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get room %s", id)
	}
	return r, nil
}

// ListRooms returns active rooms of a building.
func (s *Service) ListRooms(ctx context.Context, subject string, buildingID ulid.ULID) ([]*Room, error) {
	if err := s.checkAccess(ctx, subject, "read", KindBuilding, buildingID); err != nil {
		return nil, err
	}
	rooms, err := s.room.ListByBuilding(ctx, buildingID)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return rooms, nil
}

// CreateRoom creates a room inside a building and registers it in both
// the building's and the organization's containment lists.
func (s *Service) CreateRoom(ctx context.Context, subject string, name string, orgID, buildingID ulid.ULID, capacity int, createdBy ulid.ULID) (*Room, error) {
	if err := s.checkCreateAccess(ctx, subject, KindRoom); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Get(ctx, orgID)
	if err != nil {
		return nil, oops.Wrapf(err, "load organization %s", orgID)
	}
	building, err := s.building.Get(ctx, buildingID)
	if err != nil {
		return nil, oops.Wrapf(err, "load building %s", buildingID)
	}
	if building.OrganizationID != org.ID {
		return nil, oops.With("building", buildingID.String()).With("organization", orgID.String()).Wrapf(ErrNotFound, "building is not part of organization")
	}

	room, err := NewRoom(name, org.ID, building.ID, createdBy, capacity)
	if err != nil {
		return nil, err
	}

	sg := newSaga("create room").
		step("create room", func(ctx context.Context) error {
			return s.room.Create(ctx, room)
		}, func(ctx context.Context) error {
			room.IsActive = false
			return s.room.Update(ctx, room)
		}).
		step("register on building", func(ctx context.Context) error {
			building.AddRoom(room.ID)
			return s.building.Update(ctx, building)
		}, func(ctx context.Context) error {
			building.RemoveRoom(room.ID)
			return s.building.Update(ctx, building)
		}).
		step("register on organization", func(ctx context.Context) error {
			org.AddRoom(room.ID)
			return s.orgRepo.Update(ctx, org)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}
	return room, nil
}

// GetTable retrieves a table after checking read authorization.
func (s *Service) GetTable(ctx context.Context, subject string, id ulid.ULID) (*Table, error) {
	if err := s.checkAccess(ctx, subject, "read", KindTable, id); err != nil {
		return nil, err
	}
	t, err := s.table.Get(ctx, id)
	if err != nil {
		return nil, oops.Wrapf(err, "get table %s", id)
	}
	return t, nil
}

// ListTables returns active tables of a room.
func (s *Service) ListTables(ctx context.Context, subject string, roomID ulid.ULID) ([]*Table, error) {
	if err := s.checkAccess(ctx, subject, "read", KindRoom, roomID); err != nil {
		return nil, err
	}
	tables, err := s.table.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return tables, nil
}

// CreateTable creates a table inside a room and registers it in the
// room's, building's, and organization's containment lists.
func (s *Service) CreateTable(ctx context.Context, subject string, name string, orgID, buildingID, roomID ulid.ULID, capacity int, createdBy ulid.ULID) (*Table, error) {
	if err := s.checkCreateAccess(ctx, subject, KindTable); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Get(ctx, orgID)
	if err != nil {
		return nil, oops.Wrapf(err, "load organization %s", orgID)
	}
	building, err := s.building.Get(ctx, buildingID)
	if err != nil {
		return nil, oops.Wrapf(err, "load building %s", buildingID)
	}
	room, err := s.room.Get(ctx, roomID)
	if err != nil {
		return nil, oops.Wrapf(err, "load room %s", roomID)
	}
	if room.BuildingID != building.ID || building.OrganizationID != org.ID {
		return nil, oops.With("room", roomID.String()).With("building", buildingID.String()).Wrapf(ErrNotFound, "mismatched containment chain")
	}

	table, err := NewTable(name, org.ID, building.ID, room.ID, createdBy, capacity)
	if err != nil {
		return nil, err
	}

	sg := newSaga("create table").
		step("create table", func(ctx context.Context) error {
			return s.table.Create(ctx, table)
		}, func(ctx context.Context) error {
			table.IsActive = false
			return s.table.Update(ctx, table)
		}).
		step("register on room", func(ctx context.Context) error {
			room.AddTable(table.ID)
			return s.room.Update(ctx, room)
		}, func(ctx context.Context) error {
			room.RemoveTable(table.ID)
			return s.room.Update(ctx, room)
		}).
		step("register on building", func(ctx context.Context) error {
			building.AddTable(table.ID)
			return s.building.Update(ctx, building)
		}, func(ctx context.Context) error {
			building.RemoveTable(table.ID)
			return s.building.Update(ctx, building)
		}).
		step("register on organization", func(ctx context.Context) error {
			org.AddTable(table.ID)
			return s.orgRepo.Update(ctx, org)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}
	return table, nil
}

// CreateRoad creates a decorative road between two buildings of an
// organization.
func (s *Service) CreateRoad(ctx context.Context, subject string, orgID, from, to ulid.ULID, path []Position, flow MessageFlow) (*Road, error) {
	if err := s.checkCreateAccess(ctx, subject, KindRoad); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Get(ctx, orgID)
	if err != nil {
		return nil, oops.Wrapf(err, "load organization %s", orgID)
	}
	road, err := NewRoad(org.ID, from, to, path, flow)
	if err != nil {
		return nil, err
	}

	sg := newSaga("create road").
		step("create road", func(ctx context.Context) error {
			return s.road.Create(ctx, road)
		}, nil).
		step("register on organization", func(ctx context.Context) error {
			org.AddRoad(road.ID)
			return s.orgRepo.Update(ctx, org)
		}, nil)

	if err := sg.execute(ctx); err != nil {
		return nil, err
	}
	return road, nil
}

// ListRoads returns active roads of an organization.
func (s *Service) ListRoads(ctx context.Context, subject string, orgID ulid.ULID) ([]*Road, error) {
	if err := s.checkAccess(ctx, subject, "read", KindOrganization, orgID); err != nil {
		return nil, err
	}
	roads, err := s.road.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return roads, nil
}

// SearchHeroes returns heroes whose name matches the query. Queries
// shorter than MinSearchQueryLength characters are rejected.
func (s *Service) SearchHeroes(ctx context.Context, subject string, query string, opts ListOptions) ([]*Hero, error) {
	if !s.access.Check(ctx, subject, "read", "hero:*") {
		return nil, ErrPermissionDenied
	}
	if err := ValidateSearchQuery(query); err != nil {
		return nil, err
	}
	heroes, err := s.hero.Search(ctx, query, opts)
	if err != nil {
		return nil, oops.With("query", query).Wrap(err)
	}
	return heroes, nil
}
