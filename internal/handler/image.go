package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/service"
)

type ImageHandler struct {
	Images *service.ImageResolver
}

// Serve answers /image/<id>.<ext>.
func (h *ImageHandler) Serve(c echo.Context) error {
	idStr, ext, ok := strings.Cut(c.Param("file"), ".")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if !ok || err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	img, err := h.Images.Resolve(c.Request().Context(), id, ext)
	if err != nil {
		return fail(c, err)
	}
	defer img.Close()

	if img.File != nil {
		return c.Stream(http.StatusOK, img.Mime, img.File)
	}
	return c.Blob(http.StatusOK, img.Mime, img.Data)
}
