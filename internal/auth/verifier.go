package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/casting-agency/internal/config"
)

// Options carries the optional registered-claim checks.
type Options struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Verifier validates tokens signed with one fixed algorithm and key.
type Verifier struct {
	parser *jwt.Parser
	key    interface{}
}

// NewHS256Verifier returns a Verifier for tokens signed with a shared secret.
func NewHS256Verifier(secret []byte, opts Options) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty HS256 secret")
	}
	return &Verifier{parser: newParser(jwt.SigningMethodHS256.Alg(), opts), key: secret}, nil
}

// NewRS256Verifier returns a Verifier for tokens signed by the holder of the
// private half of the PEM encoded RSA public key.
func NewRS256Verifier(publicKeyPEM []byte, opts Options) (*Verifier, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("auth: parse RSA public key: %w", err)
	}
	return &Verifier{parser: newParser(jwt.SigningMethodRS256.Alg(), opts), key: pub}, nil
}

// NewVerifier builds a Verifier from configuration.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	opts := Options{Issuer: cfg.Issuer, Audience: cfg.Audience, Leeway: cfg.Leeway}
	switch strings.ToUpper(cfg.Algorithm) {
	case "", "HS256":
		return NewHS256Verifier([]byte(cfg.Secret), opts)
	case "RS256":
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("auth: read public key: %w", err)
		}
		return NewRS256Verifier(pem, opts)
	default:
		return nil, fmt.Errorf("auth: unsupported algorithm %q", cfg.Algorithm)
	}
}

func newParser(alg string, opts Options) *jwt.Parser {
	po := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		po = append(po, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		po = append(po, jwt.WithAudience(opts.Audience))
	}
	return jwt.NewParser(po...)
}

// Verify checks the token signature and registered claims and returns the
// decoded payload.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize runs the whole gate for one request: header extraction, token
// verification and the permission check.  It performs no I/O.
func (v *Verifier) Authorize(header, permission string) (*Claims, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	claims, err := v.Verify(raw)
	if err != nil {
		return nil, err
	}
	if !claims.Has(permission) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, permission)
	}
	return claims, nil
}
