// Package handler exposes the HTTP endpoints of the photo feed. Handlers
// parse input, call a service and translate service errors into JSON
// responses of the form {"error": "..."}.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/service"
)

// fail maps a service error to a status code. Unknown errors are logged by
// the request logger through the returned echo.HTTPError's internal error.
func fail(c echo.Context, err error) error {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "invalid input"
	case errors.Is(err, service.ErrInvalidCursor):
		status, msg = http.StatusBadRequest, "invalid max_created_at"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrAccountExists):
		status, msg = http.StatusConflict, "account name already in use"
	case errors.Is(err, service.ErrUnsupportedMedia):
		status, msg = http.StatusUnsupportedMediaType, "unsupported image type"
	case errors.Is(err, service.ErrPayloadTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "file too large"
	}
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, echo.Map{"error": msg}).SetInternal(err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}
