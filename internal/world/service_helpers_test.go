// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
)

// In-memory repositories for service tests. Each exposes error hooks so
// saga failure paths can be driven deterministically.

type memOrganizationRepo struct {
	items     map[ulid.ULID]*Organization
	createErr error
	updateErr error
	updates   int
}

func newMemOrganizationRepo() *memOrganizationRepo {
	return &memOrganizationRepo{items: map[ulid.ULID]*Organization{}}
}

func (m *memOrganizationRepo) Get(_ context.Context, id ulid.ULID) (*Organization, error) {
	org, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return org, nil
}

func (m *memOrganizationRepo) Create(_ context.Context, org *Organization) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[org.ID] = org
	return nil
}

func (m *memOrganizationRepo) Update(_ context.Context, org *Organization) error {
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[org.ID]; !ok {
		return ErrNotFound
	}
	m.items[org.ID] = org
	return nil
}

func (m *memOrganizationRepo) ListActive(_ context.Context, _ ListOptions) ([]*Organization, error) {
	var out []*Organization
	for _, org := range m.items {
		if org.IsActive {
			out = append(out, org)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memBuildingRepo struct {
	items     map[ulid.ULID]*Building
	createErr error
	updateErr error
}

func newMemBuildingRepo() *memBuildingRepo {
	return &memBuildingRepo{items: map[ulid.ULID]*Building{}}
}

func (m *memBuildingRepo) Get(_ context.Context, id ulid.ULID) (*Building, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (m *memBuildingRepo) Create(_ context.Context, b *Building) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[b.ID] = b
	return nil
}

func (m *memBuildingRepo) Update(_ context.Context, b *Building) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[b.ID]; !ok {
		return ErrNotFound
	}
	m.items[b.ID] = b
	return nil
}

func (m *memBuildingRepo) ListByOrganization(_ context.Context, orgID ulid.ULID) ([]*Building, error) {
	var out []*Building
	for _, b := range m.items {
		if b.IsActive && b.OrganizationID == orgID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memRoomRepo struct {
	items     map[ulid.ULID]*Room
	createErr error
	updateErr error

	// updateHook, when set, runs before every Update and can fail
	// selected writes.
	updateHook func(*Room) error
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{items: map[ulid.ULID]*Room{}}
}

func (m *memRoomRepo) Get(_ context.Context, id ulid.ULID) (*Room, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *memRoomRepo) Create(_ context.Context, r *Room) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[r.ID] = r
	return nil
}

func (m *memRoomRepo) Update(_ context.Context, r *Room) error {
	if m.updateHook != nil {
		if err := m.updateHook(r); err != nil {
			return err
		}
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[r.ID]; !ok {
		return ErrNotFound
	}
	m.items[r.ID] = r
	return nil
}

func (m *memRoomRepo) ListByBuilding(_ context.Context, buildingID ulid.ULID) ([]*Room, error) {
	var out []*Room
	for _, r := range m.items {
		if r.IsActive && r.BuildingID == buildingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memTableRepo struct {
	items     map[ulid.ULID]*Table
	createErr error
	updateErr error

	updateHook func(*Table) error
}

func newMemTableRepo() *memTableRepo {
	return &memTableRepo{items: map[ulid.ULID]*Table{}}
}

func (m *memTableRepo) Get(_ context.Context, id ulid.ULID) (*Table, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *memTableRepo) Create(_ context.Context, t *Table) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[t.ID] = t
	return nil
}

func (m *memTableRepo) Update(_ context.Context, t *Table) error {
	if m.updateHook != nil {
		if err := m.updateHook(t); err != nil {
			return err
		}
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[t.ID]; !ok {
		return ErrNotFound
	}
	m.items[t.ID] = t
	return nil
}

func (m *memTableRepo) ListByRoom(_ context.Context, roomID ulid.ULID) ([]*Table, error) {
	var out []*Table
	for _, t := range m.items {
		if t.IsActive && t.RoomID == roomID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memHeroRepo struct {
	items     map[ulid.ULID]*Hero
	createErr error
	updateErr error
	searchErr error

	// getByUserMisses makes the next N GetByUser calls report not-found,
	// simulating a lost create race.
	getByUserMisses int
}

func newMemHeroRepo() *memHeroRepo {
	return &memHeroRepo{items: map[ulid.ULID]*Hero{}}
}

func (m *memHeroRepo) Get(_ context.Context, id ulid.ULID) (*Hero, error) {
	h, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (m *memHeroRepo) GetByUser(_ context.Context, userID ulid.ULID) (*Hero, error) {
	if m.getByUserMisses > 0 {
		m.getByUserMisses--
		return nil, ErrNotFound
	}
	for _, h := range m.items {
		if h.UserID == userID {
			return h, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memHeroRepo) Create(_ context.Context, h *Hero) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.items {
		if existing.UserID == h.UserID {
			return ErrAlreadyExists
		}
	}
	m.items[h.ID] = h
	return nil
}

func (m *memHeroRepo) Update(_ context.Context, h *Hero) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[h.ID]; !ok {
		return ErrNotFound
	}
	m.items[h.ID] = h
	return nil
}

func (m *memHeroRepo) Search(_ context.Context, query string, _ ListOptions) ([]*Hero, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []*Hero
	for _, h := range m.items {
		if h.IsActive && strings.Contains(strings.ToLower(h.Name), strings.ToLower(query)) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memDialogRepo struct {
	items     map[ulid.ULID]*Dialog
	createErr error
	updateErr error
}

func newMemDialogRepo() *memDialogRepo {
	return &memDialogRepo{items: map[ulid.ULID]*Dialog{}}
}

func (m *memDialogRepo) Get(_ context.Context, id ulid.ULID) (*Dialog, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *memDialogRepo) Create(_ context.Context, d *Dialog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[d.ID] = d
	return nil
}

func (m *memDialogRepo) Update(_ context.Context, d *Dialog) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[d.ID]; !ok {
		return ErrNotFound
	}
	m.items[d.ID] = d
	return nil
}

func (m *memDialogRepo) ListForHero(_ context.Context, heroID ulid.ULID) ([]*Dialog, error) {
	var out []*Dialog
	for _, d := range m.items {
		if d.IsActive && d.HasParticipant(heroID) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memRoadRepo struct {
	items     map[ulid.ULID]*Road
	createErr error
}

func newMemRoadRepo() *memRoadRepo {
	return &memRoadRepo{items: map[ulid.ULID]*Road{}}
}

func (m *memRoadRepo) Create(_ context.Context, r *Road) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[r.ID] = r
	return nil
}

func (m *memRoadRepo) ListByOrganization(_ context.Context, orgID ulid.ULID) ([]*Road, error) {
	var out []*Road
	for _, r := range m.items {
		if r.IsActive && r.OrganizationID == orgID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memThreadRepo struct {
	items         map[ulid.ULID]*Thread
	createErr     error
	deactivateErr error
	deactivations int
}

func newMemThreadRepo() *memThreadRepo {
	return &memThreadRepo{items: map[ulid.ULID]*Thread{}}
}

func (m *memThreadRepo) Create(_ context.Context, t *Thread) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[t.ID] = t
	return nil
}

func (m *memThreadRepo) Get(_ context.Context, id ulid.ULID) (*Thread, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *memThreadRepo) Deactivate(_ context.Context, id ulid.ULID) error {
	m.deactivations++
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	t, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	t.IsActive = false
	return nil
}

// fakeAccess allows everything unless told otherwise.
type fakeAccess struct {
	denyAll bool
	denied  map[string]struct{}
}

func (a *fakeAccess) Check(_ context.Context, _ string, action, resource string) bool {
	if a.denyAll {
		return false
	}
	_, deny := a.denied[action+" "+resource]
	return !deny
}

func (a *fakeAccess) deny(action, resource string) {
	if a.denied == nil {
		a.denied = map[string]struct{}{}
	}
	a.denied[action+" "+resource] = struct{}{}
}

type capturedEvent struct {
	stream    string
	eventType string
	payload   []byte
}

type captureEmitter struct {
	events []capturedEvent
	err    error
}

func (e *captureEmitter) Emit(_ context.Context, stream, eventType string, payload []byte) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, capturedEvent{stream: stream, eventType: eventType, payload: payload})
	return nil
}

// fixture wires a Service against in-memory repositories.
type fixture struct {
	orgs      *memOrganizationRepo
	buildings *memBuildingRepo
	rooms     *memRoomRepo
	tables    *memTableRepo
	heroes    *memHeroRepo
	dialogs   *memDialogRepo
	roads     *memRoadRepo
	threads   *memThreadRepo
	access    *fakeAccess
	emitter   *captureEmitter
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		orgs:      newMemOrganizationRepo(),
		buildings: newMemBuildingRepo(),
		rooms:     newMemRoomRepo(),
		tables:    newMemTableRepo(),
		heroes:    newMemHeroRepo(),
		dialogs:   newMemDialogRepo(),
		roads:     newMemRoadRepo(),
		threads:   newMemThreadRepo(),
		access:    &fakeAccess{},
		emitter:   &captureEmitter{},
	}
	f.svc = NewService(ServiceConfig{
		OrganizationRepo: f.orgs,
		BuildingRepo:     f.buildings,
		RoomRepo:         f.rooms,
		TableRepo:        f.tables,
		HeroRepo:         f.heroes,
		DialogRepo:       f.dialogs,
		RoadRepo:         f.roads,
		ThreadRepo:       f.threads,
		AccessControl:    f.access,
		Emitter:          f.emitter,
		SpawnPosition:    Position{X: 400, Y: 300},
	})
	return f
}

func (f *fixture) setDefaultOrg(id ulid.ULID) {
	f.svc.defaultOrg = &id
}

func (f *fixture) seedHero(name string) *Hero {
	h, err := NewHero(ulid.Make(), name, Position{})
	if err != nil {
		panic(err)
	}
	f.heroes.items[h.ID] = h
	return h
}

func (f *fixture) seedOrg(name string, owner ulid.ULID) *Organization {
	org, err := NewOrganization(name, "", true, owner)
	if err != nil {
		panic(err)
	}
	f.orgs.items[org.ID] = org
	return org
}

func (f *fixture) seedBuilding(org *Organization) *Building {
	b, err := NewBuilding("HQ", org.ID, org.CreatedBy, BuildingTypeOffice, Position{X: 10, Y: 10}, Extent{Width: 4, Height: 4})
	if err != nil {
		panic(err)
	}
	f.buildings.items[b.ID] = b
	return b
}

func (f *fixture) seedRoom(org *Organization, b *Building, capacity int) *Room {
	r, err := NewRoom("Lobby", org.ID, b.ID, org.CreatedBy, capacity)
	if err != nil {
		panic(err)
	}
	f.rooms.items[r.ID] = r
	return r
}

func (f *fixture) seedTable(org *Organization, b *Building, r *Room, capacity int) *Table {
	t, err := NewTable("Round Table", org.ID, b.ID, r.ID, org.CreatedBy, capacity)
	if err != nil {
		panic(err)
	}
	f.tables.items[t.ID] = t
	return t
}
