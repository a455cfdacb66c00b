package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin returns a middleware that enforces the is_admin claim set by
// JWTAuth. Authenticated non-admin callers are rejected with 401, the same
// as unauthenticated ones: admin-gated endpoints do not reveal whether the
// caller's token was otherwise valid.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, ok := c.Get("is_admin").(bool)
			if !ok || !v {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "admin access required"})
			}
			return next(c)
		}
	}
}
