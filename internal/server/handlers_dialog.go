// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/pkg/response"
)

type createDialogRequest struct {
	DialogType   string   `json:"dialog_type" binding:"required"`
	Participants []string `json:"participants" binding:"required"`
	TableID      *string  `json:"table_id"`
	RoomID       *string  `json:"room_id"`
}

// createDialog opens a conversation session. The thread is created
// first; if the dialog write fails the thread is deactivated again.
func (s *Server) createDialog(c *gin.Context) {
	var req createDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	participants := make([]ulid.ULID, 0, len(req.Participants))
	for _, p := range req.Participants {
		id, err := ulid.Parse(p)
		if err != nil {
			response.BadRequest(c, "invalid participant id")
			return
		}
		participants = append(participants, id)
	}
	tableID, ok := parseOptionalID(c, req.TableID, "table_id")
	if !ok {
		return
	}
	roomID, ok := parseOptionalID(c, req.RoomID, "room_id")
	if !ok {
		return
	}
	dialog, err := s.svc.CreateDialog(c.Request.Context(), subjectOf(c),
		world.DialogType(req.DialogType), participants, tableID, roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, toDialogDTO(dialog))
}

// parseOptionalID parses a nullable ULID string from a request body.
// On failure it responds 400 and reports false.
func parseOptionalID(c *gin.Context, s *string, field string) (*ulid.ULID, bool) {
	if s == nil {
		return nil, true
	}
	id, err := ulid.Parse(*s)
	if err != nil {
		response.BadRequest(c, "invalid "+field)
		return nil, false
	}
	return &id, true
}

func (s *Server) getDialog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dialog, err := s.svc.GetDialog(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toDialogDTO(dialog))
}

func (s *Server) getThread(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	thread, err := s.svc.GetThread(c.Request.Context(), subjectOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toThreadDTO(thread))
}

func (s *Server) listDialogsForHero(c *gin.Context) {
	heroID, ok := parseID(c)
	if !ok {
		return
	}
	dialogs, err := s.svc.ListDialogsForHero(c.Request.Context(), subjectOf(c), heroID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, toDialogDTOs(dialogs))
}
