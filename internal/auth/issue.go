package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issue builds and signs an HS256 access token for subject carrying the
// given permissions.  Production tokens come from the identity provider;
// this is used for local development and tests.
func Issue(secret []byte, subject string, permissions []string, ttl time.Duration, opts Options) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth: empty HS256 secret")
	}
	now := time.Now().UTC()
	claims := Claims{
		Permissions: append([]string{}, permissions...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{opts.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
