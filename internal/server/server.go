// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

// Package server exposes the world API over HTTP.
//
// All routes below /api/v1 require a bearer token. Responses use the
// {success, data?, error?} envelope from pkg/response.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/gridtown/gridtown/internal/config"
	"github.com/gridtown/gridtown/internal/observability"
	"github.com/gridtown/gridtown/internal/world"
	"github.com/gridtown/gridtown/pkg/response"
)

// Server is the HTTP API server.
type Server struct {
	cfg        config.ServerConfig
	log        *slog.Logger
	svc        *world.Service
	jwt        *JWTService
	metrics    *observability.Metrics
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// New creates the API server. metrics may be nil to disable
// instrumentation.
func New(cfg config.ServerConfig, svc *world.Service, jwtService *JWTService, metrics *observability.Metrics, log *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		svc:     svc,
		jwt:     jwtService,
		metrics: metrics,
	}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(Instrument(s.metrics))
	}

	v1 := r.Group("/api/v1", Auth(s.jwt), s.resolveHero)

	orgs := v1.Group("/organizations")
	orgs.POST("", s.createOrganization)
	orgs.GET("", s.listOrganizations)
	orgs.GET("/:id", s.getOrganization)
	orgs.DELETE("/:id", s.deactivate(world.KindOrganization))
	orgs.POST("/:id/members", s.addOrganizationMember)
	orgs.GET("/:id/buildings", s.listBuildings)
	orgs.GET("/:id/roads", s.listRoads)
	orgs.POST("/:id/roads", s.createRoad)

	buildings := v1.Group("/buildings")
	buildings.POST("", s.createBuilding)
	buildings.GET("/:id", s.getBuilding)
	buildings.DELETE("/:id", s.deactivate(world.KindBuilding))
	buildings.GET("/:id/rooms", s.listRooms)

	rooms := v1.Group("/rooms")
	rooms.POST("", s.createRoom)
	rooms.GET("/:id", s.getRoom)
	rooms.DELETE("/:id", s.deactivate(world.KindRoom))
	rooms.GET("/:id/tables", s.listTables)
	rooms.POST("/:id/join", s.joinRoom)

	tables := v1.Group("/tables")
	tables.POST("", s.createTable)
	tables.GET("/:id", s.getTable)
	tables.DELETE("/:id", s.deactivate(world.KindTable))
	tables.POST("/:id/join", s.joinTable)

	heroes := v1.Group("/heroes")
	heroes.POST("", s.createOrGetHero)
	heroes.GET("", s.searchHeroes)
	heroes.GET("/me", s.getCurrentHero)
	heroes.PUT("/position", s.updateHeroPosition)
	heroes.POST("/leave", s.leaveCurrentLocation)
	heroes.GET("/:id", s.getHero)
	heroes.GET("/:id/dialogs", s.listDialogsForHero)

	dialogs := v1.Group("/dialogs")
	dialogs.POST("", s.createDialog)
	dialogs.GET("/:id", s.getDialog)
	dialogs.DELETE("/:id", s.deactivate(world.KindDialog))

	v1.GET("/threads/:id", s.getThread)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
	return r
}

// Start begins serving the API. It returns an error channel that
// receives any error from the HTTP server after startup; the channel is
// closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.cfg.Addr).Wrap(err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.log.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.log.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}

	s.log.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not
// running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
