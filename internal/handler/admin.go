package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/service"
)

type AdminHandler struct {
	Admin *service.AdminService
}

// Banned lists accounts that can be banned.
func (h *AdminHandler) Banned(c echo.Context) error {
	users, err := h.Admin.BannableUsers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Ban soft-deletes every uid[] (or uid) form value.
func (h *AdminHandler) Ban(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	raw := append(params["uid[]"], params["uid"]...)
	ids := make([]uint64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "uid must be an integer"})
		}
		ids = append(ids, id)
	}
	n, err := h.Admin.Ban(c.Request().Context(), ids)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"banned": n})
}

// Initialize resets the dataset.
func (h *AdminHandler) Initialize(c echo.Context) error {
	if err := h.Admin.Initialize(c.Request().Context()); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}
