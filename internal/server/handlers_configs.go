package server

import (
	"errors"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/mister-vinster/ml-movies/internal/catalog"
	"github.com/mister-vinster/ml-movies/internal/domain"
	apperrors "github.com/mister-vinster/ml-movies/internal/errors"
)

// maxConfigsBytes bounds the uploaded configuration document.
const maxConfigsBytes = 1 << 20

func (s *Server) handleGetConfigs(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := s.userID(c)
	if err != nil {
		return err
	}

	snap, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}
	if len(snap.Mods) > 0 && !snap.IsModerator(userID) {
		return apperrors.ForbiddenError("only moderators can read the configuration")
	}

	raw, ok, err := s.catalog.Raw(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(404, map[string]string{"status": "no configuration saved yet"})
	}

	return c.Blob(200, echo.MIMEApplicationJSON, []byte(raw))
}

func (s *Server) handleSaveConfigs(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := s.userID(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxConfigsBytes))
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}

	snap, err := s.catalog.Save(ctx, body, userID)
	switch {
	case errors.Is(err, catalog.ErrNotModerator):
		return apperrors.ForbiddenError("only moderators can save the configuration")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return err
	case err != nil:
		return apperrors.ValidationError(err.Error())
	}

	return c.JSON(200, map[string]any{
		"status": "saved",
		"movies": len(snap.Movies),
		"mods":   len(snap.Mods),
	})
}
