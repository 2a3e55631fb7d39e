package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Health and monitoring
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Movie API
	s.echo.GET("/api/movies", s.handleRankings, s.requireUser)
	s.echo.GET("/api/movies/filters", s.handleFilters)
	s.echo.GET("/api/movies/:id", s.handleMovie, s.requireUser)
	s.echo.POST("/api/movies/:id/vote", s.handleSubmitVote, s.requireUser)
	s.echo.DELETE("/api/movies/:id/vote", s.handleResetVote, s.requireUser)

	// Moderation
	s.echo.GET("/api/configs", s.handleGetConfigs, s.requireUser)
	s.echo.PUT("/api/configs", s.handleSaveConfigs, s.requireUser)
	s.echo.GET("/api/export", s.handleExport, s.requireUser)
}
