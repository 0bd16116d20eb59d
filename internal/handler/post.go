package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/middleware"
	"github.com/iliyamo/photo-feed/internal/service"
)

// PostHandler accepts uploads.
type PostHandler struct {
	Posts       *service.PostService
	UploadLimit int64
}

// Create stores the multipart "file" with the "body" caption. The part's
// Content-Type is the image mime type.
func (h *PostHandler) Create(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	if h.UploadLimit > 0 && fh.Size > h.UploadLimit {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer f.Close()

	r := io.Reader(f)
	if h.UploadLimit > 0 {
		r = io.LimitReader(f, h.UploadLimit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}

	id, err := h.Posts.CreatePost(c.Request().Context(), service.CreatePostInput{
		UserID: u.ID,
		Mime:   fh.Header.Get(echo.HeaderContentType),
		Body:   c.FormValue("body"),
		Data:   data,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
