// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package server

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/pkg/errutil"
	"github.com/gridtown/gridtown/pkg/response"
)

// respondError translates a domain error into an HTTP response.
//
// Partial writes are surfaced with a machine-readable code so clients
// can distinguish "retry blindly" from "the world graph may need repair".
func respondError(c *gin.Context, err error) {
	var validationErr *world.ValidationError
	var partialErr *world.PartialWriteError

	switch {
	// PartialWriteError wraps its step failure, so it must be checked
	// before the sentinel matches.
	case errors.As(err, &partialErr):
		errutil.LogError(slog.Default(), "partial write", err)
		response.InternalCode(c, "PARTIAL_WRITE", "operation partially applied")
	case errors.Is(err, world.ErrPermissionDenied):
		response.Forbidden(c, "permission denied")
	case errors.Is(err, world.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Error())
	case errors.Is(err, world.ErrInvalidKind),
		errors.Is(err, world.ErrInvalidDialogType),
		errors.Is(err, world.ErrInvalidFlowDirection):
		response.BadRequest(c, err.Error())
	case errors.Is(err, world.ErrCapacityExceeded):
		response.Conflict(c, "capacity exceeded")
	case errors.Is(err, world.ErrAlreadyExists):
		response.Conflict(c, "already exists")
	default:
		errutil.LogError(slog.Default(), "request failed", err)
		response.Internal(c, "internal error")
	}
}
