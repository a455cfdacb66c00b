package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// AuthCookieName is the cookie carrying the access token for browser
// clients. API clients use the Authorization header instead; both carry
// the same token.
const AuthCookieName = "auth-token"

// JWTAuth returns an Echo middleware that validates an access token and
// injects its claims into the request context. The token is read from the
// Authorization header ("Bearer <token>") or, failing that, from the
// auth-token cookie. The provided secret must match the one used when
// issuing tokens. Handlers access the identity via c.Get("user_id"),
// c.Get("email") and c.Get("is_admin").
//
// Verification fails closed: any missing, malformed or expired token gets a
// 401 response; nothing is ever propagated as a panic or 500.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}

			// Parse with HS256 only; any other signing method is rejected.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Store identity claims in the context. Numeric claims arrive as
			// float64 from JSON; downstream helpers handle the conversion.
			c.Set("user_id", claims["sub"])
			c.Set("email", claims["email"])
			isAdmin, _ := claims["is_admin"].(bool)
			c.Set("is_admin", isAdmin)
			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw token string from the Authorization
// header or the auth cookie. Returns "" when neither is present.
func tokenFromRequest(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
