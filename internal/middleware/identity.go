package middleware

// identity.go holds the context keys shared across middleware and the
// helpers that read the caller's identity back out of the Echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/casting-agency/internal/auth"
)

const (
	claimsKey = "claims"
	userIDKey = "user_id"
)

// ClaimsFrom returns the verified token claims, or nil when the route is
// not behind RequirePermission.
func ClaimsFrom(c echo.Context) *auth.Claims {
	cl, _ := c.Get(claimsKey).(*auth.Claims)
	return cl
}

// userID returns the token subject, or "anon" for unauthenticated requests.
func userID(c echo.Context) string {
	if s, ok := c.Get(userIDKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
