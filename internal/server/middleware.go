// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/gridtown/gridtown/internal/access"
	"github.com/gridtown/gridtown/internal/observability"
	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/pkg/response"
)

// Context keys set by the middleware chain.
const (
	// ContextUserID holds the authenticated user's ulid.ULID.
	ContextUserID = "user_id"
	// ContextSubject holds the access subject string for the request.
	ContextSubject = "subject"
	// ContextHero holds the caller's *world.Hero, when one exists.
	ContextHero = "hero"
)

// Auth returns a middleware that validates the bearer token and stores
// the user ID in the request context.
func Auth(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// resolveHero looks up the caller's hero and derives the access subject
// for the request. A user without a hero yet gets a provisional subject
// keyed by user ID, which is enough to create one.
func (s *Server) resolveHero(c *gin.Context) {
	userID := c.MustGet(ContextUserID).(ulid.ULID)
	subject := access.HeroSubject(userID.String())

	hero, err := s.svc.GetHeroByUser(c.Request.Context(), subject, userID)
	switch {
	case err == nil:
		subject = access.HeroSubject(hero.ID.String())
		c.Set(ContextHero, hero)
	case errors.Is(err, world.ErrNotFound):
		// First request before hero creation, keep the provisional subject.
	default:
		respondError(c, err)
		c.Abort()
		return
	}
	c.Set(ContextSubject, subject)
	c.Next()
}

// currentHero returns the caller's hero, or responds 404 and reports
// false when the user has not created one.
func currentHero(c *gin.Context) (*world.Hero, bool) {
	v, ok := c.Get(ContextHero)
	if !ok {
		response.NotFound(c, "hero not found")
		return nil, false
	}
	return v.(*world.Hero), true
}

func subjectOf(c *gin.Context) string {
	return c.MustGet(ContextSubject).(string)
}

func userIDOf(c *gin.Context) ulid.ULID {
	return c.MustGet(ContextUserID).(ulid.ULID)
}

// RequestLogger logs each request with method, route, status, and latency.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		log.LogAttrs(c.Request.Context(), slog.LevelInfo, "http request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// Instrument records request counts and latencies per route.
func Instrument(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
