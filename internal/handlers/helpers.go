package handlers

import (
	"errors"
	"net/http"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// httpError maps the application error taxonomy onto HTTP statuses so the
// UI can tell "fix your input" from "not allowed", "no longer possible" and
// "try again later".
func httpError(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.Validation:
			return echo.NewHTTPError(http.StatusBadRequest, ae.Error())
		case apperr.Authorization:
			return echo.NewHTTPError(http.StatusForbidden, ae.Error())
		case apperr.Conflict:
			return echo.NewHTTPError(http.StatusConflict, ae.Error())
		case apperr.NotFound:
			return echo.NewHTTPError(http.StatusNotFound, ae.Error())
		case apperr.BackendUnavailable:
			return echo.NewHTTPError(http.StatusServiceUnavailable, ae.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// principal returns the authenticated email or an unauthorized error.
func principal(c echo.Context) (string, error) {
	email := middleware.Principal(c)
	if email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return email, nil
}
