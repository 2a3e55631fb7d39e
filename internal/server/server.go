// Package server exposes the vote engine over HTTP: rankings, per-movie
// aggregates, vote submit/reset, configuration editing, CSV export, and
// the operational endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mister-vinster/ml-movies/internal/catalog"
	"github.com/mister-vinster/ml-movies/internal/config"
	"github.com/mister-vinster/ml-movies/internal/domain"
	apperrors "github.com/mister-vinster/ml-movies/internal/errors"
	"github.com/mister-vinster/ml-movies/internal/vote"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	engine    *vote.Engine
	catalog   *catalog.Service
	store     domain.CounterStore
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, engine *vote.Engine, cat *catalog.Service, store domain.CounterStore, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		engine:    engine,
		catalog:   cat,
		store:     store,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
