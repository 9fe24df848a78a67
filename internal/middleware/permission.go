package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/casting-agency/internal/auth"
)

// Authorizer checks an Authorization header against one permission.
// *auth.Verifier satisfies it.
type Authorizer interface {
	Authorize(header, permission string) (*auth.Claims, error)
}

// RequirePermission returns an Echo middleware that rejects the request
// with 401 unless the bearer token grants permission.  It runs before the
// handler reads the body.  On success the verified claims are stored under
// "claims" and the token subject under "user_id".
func RequirePermission(a Authorizer, permission string) echo.MiddlewareFunc {
	if a == nil {
		panic("nil authorizer")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := a.Authorize(c.Request().Header.Get(echo.HeaderAuthorization), permission)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized).SetInternal(err)
			}
			c.Set(claimsKey, claims)
			c.Set(userIDKey, claims.Subject)
			return next(c)
		}
	}
}
