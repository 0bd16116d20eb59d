package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/middleware"
	"github.com/iliyamo/photo-feed/internal/service"
)

type CommentHandler struct {
	Comments *service.CommentService
}

// Create adds a comment from the post_id and comment form fields.
func (h *CommentHandler) Create(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	postID, err := strconv.ParseUint(c.FormValue("post_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "post_id must be an integer"})
	}
	id, err := h.Comments.AddComment(c.Request().Context(), service.CreateCommentInput{
		PostID:  postID,
		UserID:  u.ID,
		Comment: c.FormValue("comment"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "post_id": postID})
}
