// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package server

import (
	"github.com/gin-gonic/gin"

	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/pkg/response"
)

type createHeroRequest struct {
	Name string `json:"name" binding:"required"`
}

// createOrGetHero registers the caller's hero, or returns the existing
// one. Safe to call on every sign-in.
func (s *Server) createOrGetHero(c *gin.Context) {
	var req createHeroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	hero, err := s.svc.CreateOrGetHero(c.Request.Context(), subjectOf(c), userIDOf(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, existed := c.Get(ContextHero); existed {
		response.OK(c, toHeroDTO(hero))
		return
	}
	response.Created(c, toHeroDTO(hero))
}

func (s *Server) getCurrentHero(c *gin.Context) {
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	response.OK(c, toHeroDTO(hero))
}

func (s *Server) getHero(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	hero, err := s.svc.GetHero(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toHeroDTO(hero))
}

func (s *Server) searchHeroes(c *gin.Context) {
	heroes, err := s.svc.SearchHeroes(c.Request.Context(), subjectOf(c), c.Query("query"), listOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toHeroDTOs(heroes))
}

type updatePositionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// updateHeroPosition moves the caller's hero on the world grid,
// creating the hero record on first contact.
func (s *Server) updateHeroPosition(c *gin.Context) {
	var req updatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	hero, err := s.svc.UpdateHeroPosition(c.Request.Context(), subjectOf(c), userIDOf(c), world.Position{X: req.X, Y: req.Y})
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toHeroDTO(hero))
}

// leaveCurrentLocation vacates the caller's hero from its table and
// room, clearing both sides of the occupancy relation.
func (s *Server) leaveCurrentLocation(c *gin.Context) {
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	updated, err := s.svc.LeaveCurrentLocation(c.Request.Context(), subjectOf(c), hero.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toHeroDTO(updated))
}

// joinRoom seats the caller's hero in the room.
func (s *Server) joinRoom(c *gin.Context) {
	roomID, ok := parseID(c)
	if !ok {
		return
	}
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	if err := s.svc.JoinRoom(c.Request.Context(), subjectOf(c), roomID, hero.ID); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// joinTable seats the caller's hero at the table.
func (s *Server) joinTable(c *gin.Context) {
	tableID, ok := parseID(c)
	if !ok {
		return
	}
	hero, ok := currentHero(c)
	if !ok {
		return
	}
	if err := s.svc.JoinTable(c.Request.Context(), subjectOf(c), tableID, hero.ID); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
