// Package auth verifies bearer tokens and checks the permissions they carry.
// Every endpoint of the API is guarded by exactly one permission string such
// as "get:actors" or "patch:movies"; a token is accepted for an endpoint when
// its signature, expiry, issuer and audience check out and its permissions
// claim lists that string.
package auth

import (
	"errors"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Permissions guarding the catalog endpoints.
const (
	PermGetActors    = "get:actors"
	PermPostActors   = "post:actors"
	PermPatchActors  = "patch:actors"
	PermDeleteActors = "delete:actors"
	PermGetMovies    = "get:movies"
	PermPostMovies   = "post:movies"
	PermPatchMovies  = "patch:movies"
	PermDeleteMovies = "delete:movies"
)

// AllPermissions lists every permission the API knows about.
var AllPermissions = []string{
	PermGetActors, PermPostActors, PermPatchActors, PermDeleteActors,
	PermGetMovies, PermPostMovies, PermPatchMovies, PermDeleteMovies,
}

var (
	// ErrMissingHeader means the request had no Authorization header.
	ErrMissingHeader = errors.New("authorization header is expected")
	// ErrMalformedHeader means the header was not "Bearer <token>".
	ErrMalformedHeader = errors.New("authorization header must be bearer token")
	// ErrInvalidToken covers bad signatures, expired tokens and claim mismatches.
	ErrInvalidToken = errors.New("invalid token")
	// ErrPermissionDenied means the token lacks the required permission.
	ErrPermissionDenied = errors.New("permission not found")
)

// Claims is the payload of an access token.
type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Has reports whether perm is among the granted permissions.
func (c *Claims) Has(perm string) bool {
	return c != nil && slices.Contains(c.Permissions, perm)
}

// BearerToken extracts the raw token from an Authorization header value.
// The scheme is matched case-insensitively and exactly two parts are
// required.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}
