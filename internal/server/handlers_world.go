// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/pkg/response"
)

// parseID parses the ":id" path parameter as a ULID. On failure it
// responds 400 and reports false.
func parseID(c *gin.Context) (ulid.ULID, bool) {
	id, err := ulid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return ulid.ULID{}, false
	}
	return id, true
}

func listOptions(c *gin.Context) world.ListOptions {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return world.ListOptions{Limit: limit, Offset: offset}
}

type createOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (s *Server) createOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	org, err := s.svc.CreateOrganization(c.Request.Context(), subjectOf(c), req.Name, req.Description, req.IsPublic, hero.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, toOrganizationDTO(org))
}

func (s *Server) listOrganizations(c *gin.Context) {
	orgs, err := s.svc.ListOrganizations(c.Request.Context(), subjectOf(c), listOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toOrganizationDTOs(orgs))
}

func (s *Server) getOrganization(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	org, err := s.svc.GetOrganization(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toOrganizationDTO(org))
}

type addMemberRequest struct {
	HeroID string `json:"hero_id" binding:"required"`
}

func (s *Server) addOrganizationMember(c *gin.Context) {
	orgID, ok := parseID(c)
	if !ok {
		return
	}
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	heroID, err := ulid.Parse(req.HeroID)
	if err != nil {
		response.BadRequest(c, "invalid hero_id")
		return
	}
	org, err := s.svc.AddOrganizationMember(c.Request.Context(), subjectOf(c), orgID, heroID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toOrganizationDTO(org))
}

type createBuildingRequest struct {
	Name           string         `json:"name" binding:"required"`
	OrganizationID string         `json:"organization_id" binding:"required"`
	BuildingType   string         `json:"building_type" binding:"required"`
	Position       world.Position `json:"position"`
	Size           world.Extent   `json:"size"`
}

func (s *Server) createBuilding(c *gin.Context) {
	var req createBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	orgID, err := ulid.Parse(req.OrganizationID)
	if err != nil {
		response.BadRequest(c, "invalid organization_id")
		return
	}
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	building, err := s.svc.CreateBuilding(c.Request.Context(), subjectOf(c), req.Name, orgID,
		world.BuildingType(req.BuildingType), req.Position, req.Size, hero.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, toBuildingDTO(building))
}

func (s *Server) getBuilding(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	building, err := s.svc.GetBuilding(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toBuildingDTO(building))
}

func (s *Server) listBuildings(c *gin.Context) {
	orgID, ok := parseID(c)
	if !ok {
		return
	}
	buildings, err := s.svc.ListBuildings(c.Request.Context(), subjectOf(c), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toBuildingDTOs(buildings))
}

type createRoomRequest struct {
	Name           string `json:"name" binding:"required"`
	OrganizationID string `json:"organization_id" binding:"required"`
	BuildingID     string `json:"building_id" binding:"required"`
	Capacity       int    `json:"capacity"`
}

func (s *Server) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	orgID, err := ulid.Parse(req.OrganizationID)
	if err != nil {
		response.BadRequest(c, "invalid organization_id")
		return
	}
	buildingID, err := ulid.Parse(req.BuildingID)
	if err != nil {
		response.BadRequest(c, "invalid building_id")
		return
	}
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	room, err := s.svc.CreateRoom(c.Request.Context(), subjectOf(c), req.Name, orgID, buildingID, req.Capacity, hero.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, toRoomDTO(room))
}

func (s *Server) getRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	room, err := s.svc.GetRoom(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toRoomDTO(room))
}

func (s *Server) listRooms(c *gin.Context) {
	buildingID, ok := parseID(c)
	if !ok {
		return
	}
	rooms, err := s.svc.ListRooms(c.Request.Context(), subjectOf(c), buildingID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toRoomDTOs(rooms))
}

type createTableRequest struct {
	Name           string `json:"name" binding:"required"`
	OrganizationID string `json:"organization_id" binding:"required"`
	BuildingID     string `json:"building_id" binding:"required"`
	RoomID         string `json:"room_id" binding:"required"`
	Capacity       int    `json:"capacity"`
}

func (s *Server) createTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	orgID, err := ulid.Parse(req.OrganizationID)
	if err != nil {
		response.BadRequest(c, "invalid organization_id")
		return
	}
	buildingID, err := ulid.Parse(req.BuildingID)
	if err != nil {
		response.BadRequest(c, "invalid building_id")
		return
	}
	roomID, err := ulid.Parse(req.RoomID)
	if err != nil {
		response.BadRequest(c, "invalid room_id")
		return
	}
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	table, err := s.svc.CreateTable(c.Request.Context(), subjectOf(c), req.Name, orgID, buildingID, roomID, req.Capacity, hero.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, toTableDTO(table))
}

func (s *Server) getTable(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	table, err := s.svc.GetTable(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toTableDTO(table))
}

func (s *Server) listTables(c *gin.Context) {
	roomID, ok := parseID(c)
	if !ok {
		return
	}
	tables, err := s.svc.ListTables(c.Request.Context(), subjectOf(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toTableDTOs(tables))
}

type createRoadRequest struct {
	FromBuilding string            `json:"from_building" binding:"required"`
	ToBuilding   string            `json:"to_building" binding:"required"`
	Path         []world.Position  `json:"path"`
	Flow         world.MessageFlow `json:"flow"`
}

func (s *Server) createRoad(c *gin.Context) {
	orgID, ok := parseID(c)
	if !ok {
		return
	}
	var req createRoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	from, err := ulid.Parse(req.FromBuilding)
	if err != nil {
		response.BadRequest(c, "invalid from_building")
		return
	}
	to, err := ulid.Parse(req.ToBuilding)
	if err != nil {
		response.BadRequest(c, "invalid to_building")
		return
	}
	road, err := s.svc.CreateRoad(c.Request.Context(), subjectOf(c), orgID, from, to, req.Path, req.Flow)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, toRoadDTO(road))
}

func (s *Server) listRoads(c *gin.Context) {
	orgID, ok := parseID(c)
	if !ok {
		return
	}
	roads, err := s.svc.ListRoads(c.Request.Context(), subjectOf(c), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toRoadDTOs(roads))
}

// deactivate returns a handler that soft-deletes an entity of the given
// kind, cascading per the world rules.
func (s *Server) deactivate(kind world.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := s.svc.DeactivateEntity(c.Request.Context(), subjectOf(c), kind, id); err != nil {
			respondError(c, err)
			return
		}
		response.NoContent(c)
	}
}
