package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/service"
)

// FeedHandler serves the read-only pages.
type FeedHandler struct {
	Feed *service.FeedService
}

// Index returns the global timeline.
func (h *FeedHandler) Index(c echo.Context) error {
	posts, err := h.Feed.Timeline(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// Posts returns the page of posts created before max_created_at.
func (h *FeedHandler) Posts(c echo.Context) error {
	posts, err := h.Feed.TimelineBefore(c.Request().Context(), c.QueryParam("max_created_at"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// PostDetail returns one post with every comment.
func (h *FeedHandler) PostDetail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	post, err := h.Feed.PostDetail(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

// UserPage returns a profile bundle.
func (h *FeedHandler) UserPage(c echo.Context) error {
	page, err := h.Feed.UserPage(c.Request().Context(), c.Param("account_name"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
