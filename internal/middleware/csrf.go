package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CSRFHeader may carry the token for clients that do not post forms.
const CSRFHeader = "X-CSRF-Token"

// RequireCSRF compares the csrf_token form field (or CSRFHeader) with the
// token bound to the session and rejects mismatches with 422.
func RequireCSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			want := CSRFToken(c)
			got := c.FormValue("csrf_token")
			if got == "" {
				got = c.Request().Header.Get(CSRFHeader)
			}
			if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid csrf token"})
			}
			return next(c)
		}
	}
}
