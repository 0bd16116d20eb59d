package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/repository"
	"github.com/iliyamo/photo-feed/internal/utils"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "isuconp_session"

const (
	ctxUserKey = "user"
	ctxCSRFKey = "csrf_token"
)

// SessionUserLoader loads the user a session points at.
type SessionUserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Session reads the session cookie and, when it is valid and its user
// still exists and is not banned, stores the user and the session's CSRF
// token in the context. Every other request continues anonymously.
func Session(secret string, users SessionUserLoader, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(SessionCookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			sess, err := utils.ParseSessionToken(secret, ck.Value)
			if err != nil {
				return next(c)
			}
			u, err := users.GetByID(c.Request().Context(), sess.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				return next(c)
			}
			if err != nil {
				log.Error("session user lookup failed", zap.Uint64("user_id", sess.UserID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			if !u.Active() {
				return next(c)
			}
			c.Set(ctxUserKey, u)
			c.Set(ctxCSRFKey, sess.CSRF)
			return next(c)
		}
	}
}

// CurrentUser returns the logged-in user, if any.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUserKey).(model.User)
	return u, ok
}

// CSRFToken returns the session's CSRF token or "".
func CSRFToken(c echo.Context) string {
	s, _ := c.Get(ctxCSRFKey).(string)
	return s
}

// StartSession issues a fresh session cookie for userID and returns the
// new CSRF token.
func StartSession(c echo.Context, secret string, ttlMin int, userID uint64) (string, error) {
	csrf := utils.NewCSRFToken()
	raw, exp, err := utils.NewSessionToken(secret, userID, csrf, ttlMin)
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    raw,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return csrf, nil
}

// ClearSession expires the session cookie.
func ClearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
