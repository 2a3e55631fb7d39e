package server

import (
	"github.com/labstack/echo/v4"

	apperrors "github.com/mister-vinster/ml-movies/internal/errors"
)

const userHeader = "X-User-ID"

// requireUser extracts the caller identity from the X-User-ID header. The
// platform gateway in front of this service authenticates users and
// forwards their opaque id; the engine never interprets it.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(userHeader)
		if userID == "" {
			return apperrors.ValidationError("missing " + userHeader + " header")
		}
		c.Set("userID", userID)
		return next(c)
	}
}

func (s *Server) userID(c echo.Context) (string, error) {
	userID, ok := c.Get("userID").(string)
	if !ok || userID == "" {
		return "", apperrors.InternalError("invalid user ID in context", nil)
	}
	return userID, nil
}
