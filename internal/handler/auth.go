package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/photo-feed/internal/config"
	"github.com/iliyamo/photo-feed/internal/middleware"
	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/service"
)

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

type credentialsReq struct {
	AccountName string `json:"account_name" form:"account_name"`
	Password    string `json:"password" form:"password"`
}

type sessionResp struct {
	User      model.Author `json:"user"`
	CSRFToken string       `json:"csrf_token"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.AccountName, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return h.startSession(c, http.StatusCreated, u)
}

// Login verifies credentials of an active account and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Login(ctx, req.AccountName, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return h.startSession(c, http.StatusOK, u)
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSession(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current user and the CSRF token required by write routes.
func (h *AuthHandler) Me(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, sessionResp{User: u.Author(), CSRFToken: middleware.CSRFToken(c)})
}

func (h *AuthHandler) startSession(c echo.Context, status int, u model.User) error {
	csrf, err := middleware.StartSession(c, h.Cfg.SessionSecret, h.Cfg.SessionTTLMin, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(status, sessionResp{User: u.Author(), CSRFToken: csrf})
}
