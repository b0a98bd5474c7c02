// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package main

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gridtown/gridtown/internal/config"
	"github.com/gridtown/gridtown/internal/store"
	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/internal/world/postgres"
)

const (
	// seedFounderUserID is the fixed user id of the founder hero, so
	// reruns find the same hero instead of creating another.
	seedFounderUserID = "00000000000000000000000001"

	seedOrgName = "Gridtown Commons"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a default world",
		Long: `Create the default organization with starter buildings, rooms,
tables, and roads, all in one transaction. Safe to run repeatedly: an
already-seeded database is left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runSeed(ctx, cmd)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "seeding timeout")

	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	pool, err := store.Open(ctx, databaseURL(cfg.Database.URL))
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	spawn := world.Position{X: cfg.World.SpawnX, Y: cfg.World.SpawnY}

	var org *world.Organization
	created := false
	err = postgres.NewTransactor(pool).InTransaction(ctx, func(tx postgres.Pool) error {
		var txErr error
		org, created, txErr = seedWorld(ctx, tx, spawn)
		return txErr
	})
	if err != nil {
		return oops.Code("SEED_FAILED").Wrap(err)
	}

	if !created {
		cmd.Printf("World already seeded: organization %s (%s)\n", org.Name, org.ID)
		return nil
	}

	cmd.Printf("World seeded: organization %s (%s)\n", org.Name, org.ID)
	cmd.Printf("Set world.default_organization to %s so new heroes join it\n", org.ID)
	return nil
}

// seedBuilding describes one starter building and its rooms. The first
// room of each building gets a table.
type seedBuilding struct {
	name  string
	btype world.BuildingType
	pos   world.Position
	rooms []string
}

var seedLayout = []seedBuilding{
	{"Town Hall", world.BuildingTypeOffice, world.Position{X: 320, Y: 200}, []string{"Lobby", "Council Chamber"}},
	{"Workshop", world.BuildingTypeFactory, world.Position{X: 560, Y: 200}, []string{"Assembly Floor"}},
	{"Depot", world.BuildingTypeLogistics, world.Position{X: 320, Y: 420}, []string{"Loading Bay"}},
	{"Helpdesk", world.BuildingTypeSupport, world.Position{X: 560, Y: 420}, []string{"Front Desk"}},
}

// seedWorld creates the default organization and its starter layout on
// the given connection. Returns the organization and whether this run
// created it.
func seedWorld(ctx context.Context, tx postgres.Pool, spawn world.Position) (*world.Organization, bool, error) {
	orgs := postgres.NewOrganizationRepository(tx)
	buildings := postgres.NewBuildingRepository(tx)
	rooms := postgres.NewRoomRepository(tx)
	tables := postgres.NewTableRepository(tx)
	heroes := postgres.NewHeroRepository(tx)
	roads := postgres.NewRoadRepository(tx)

	if org, err := findSeedOrganization(ctx, orgs); err != nil {
		return nil, false, err
	} else if org != nil {
		return org, false, nil
	}

	founder, err := seedFounder(ctx, heroes, spawn)
	if err != nil {
		return nil, false, err
	}

	org, err := world.NewOrganization(seedOrgName,
		"The shared starting grounds of Gridtown.", true, founder.ID)
	if err != nil {
		return nil, false, err
	}

	var (
		pendingBuildings []*world.Building
		pendingRooms     []*world.Room
		pendingTables    []*world.Table
		pendingRoads     []*world.Road
	)

	size := world.Extent{Width: 6, Height: 4}
	for _, plan := range seedLayout {
		b, err := world.NewBuilding(plan.name, org.ID, founder.ID, plan.btype, plan.pos, size)
		if err != nil {
			return nil, false, err
		}
		org.AddBuilding(b.ID)
		pendingBuildings = append(pendingBuildings, b)

		for i, roomName := range plan.rooms {
			room, err := world.NewRoom(roomName, org.ID, b.ID, founder.ID, 16)
			if err != nil {
				return nil, false, err
			}
			b.AddRoom(room.ID)
			org.AddRoom(room.ID)

			if i == 0 {
				table, err := world.NewTable(roomName+" Table", org.ID, b.ID, room.ID, founder.ID, 0)
				if err != nil {
					return nil, false, err
				}
				room.AddTable(table.ID)
				b.AddTable(table.ID)
				org.AddTable(table.ID)
				pendingTables = append(pendingTables, table)
			}
			pendingRooms = append(pendingRooms, room)
		}
	}

	// Roads radiate from the first building to the others.
	hall := pendingBuildings[0]
	for _, b := range pendingBuildings[1:] {
		road, err := world.NewRoad(org.ID, hall.ID, b.ID,
			[]world.Position{hall.Position, b.Position},
			world.MessageFlow{Direction: world.FlowBidirectional})
		if err != nil {
			return nil, false, err
		}
		org.AddRoad(road.ID)
		pendingRoads = append(pendingRoads, road)
	}

	if err := orgs.Create(ctx, org); err != nil {
		return nil, false, err
	}
	for _, b := range pendingBuildings {
		if err := buildings.Create(ctx, b); err != nil {
			return nil, false, err
		}
	}
	for _, room := range pendingRooms {
		if err := rooms.Create(ctx, room); err != nil {
			return nil, false, err
		}
	}
	for _, t := range pendingTables {
		if err := tables.Create(ctx, t); err != nil {
			return nil, false, err
		}
	}
	for _, road := range pendingRoads {
		if err := roads.Create(ctx, road); err != nil {
			return nil, false, err
		}
	}

	// Record the founder's membership on the hero side too.
	if founder.JoinOrganization(org.ID) {
		founder.CurrentOrganization = &org.ID
		if err := heroes.Update(ctx, founder); err != nil {
			return nil, false, err
		}
	}

	return org, true, nil
}

// seedFounder finds or creates the founder hero that owns the seeded
// organization.
func seedFounder(ctx context.Context, heroes *postgres.HeroRepository, spawn world.Position) (*world.Hero, error) {
	userID, err := ulid.Parse(seedFounderUserID)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	founder, err := heroes.GetByUser(ctx, userID)
	if err == nil {
		return founder, nil
	}
	if !errors.Is(err, world.ErrNotFound) {
		return nil, oops.Wrapf(err, "look up founder hero")
	}

	founder, err = world.NewHero(userID, "Gridtown Founder", spawn)
	if err != nil {
		return nil, err
	}
	if err := heroes.Create(ctx, founder); err != nil {
		return nil, oops.Wrapf(err, "create founder hero")
	}
	return founder, nil
}

// findSeedOrganization looks for an existing seeded organization by name.
func findSeedOrganization(ctx context.Context, orgs *postgres.OrganizationRepository) (*world.Organization, error) {
	offset := 0
	for {
		page, err := orgs.ListActive(ctx, world.ListOptions{Limit: 100, Offset: offset})
		if err != nil {
			return nil, oops.Wrapf(err, "list organizations")
		}
		for _, org := range page {
			if org.Name == seedOrgName {
				return org, nil
			}
		}
		if len(page) < 100 {
			return nil, nil
		}
		offset += len(page)
	}
}
