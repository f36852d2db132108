// Package token builds and signs tenant-scoped identity tokens.
//
// A token is an RS256-signed JWT carrying three claims: the authenticated
// username as subject, the tenant's company identifier, and an absolute
// expiration. The expiration unit is seconds since epoch throughout.
package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/piarcha/piarka/pkg/tenant"
)

// ErrSigning is returned when the signing operation fails. Callers can
// always tell a token apart from a failed issuance; no sentinel token value
// is ever produced.
var ErrSigning = errors.New("token signing failed")

// DefaultValidity is the validity window used when none is configured.
const DefaultValidity = 15 * time.Minute

// Claims is the payload embedded in issued tokens.
type Claims struct {
	jwt.RegisteredClaims
	Company string `json:"company"`
}

// Issuer mints signed tokens with a fixed validity window.
type Issuer struct {
	validity time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates an issuer. A non-positive validity falls back to
// DefaultValidity.
func New(validity time.Duration) *Issuer {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Issuer{validity: validity, now: time.Now}
}

// Issue builds claims for username under t and signs them with the tenant's
// private key, returning the compact token string.
func (i *Issuer) Issue(username string, t *tenant.Tenant) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(i.now().Add(i.validity)),
		},
		Company: t.Company,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.SigningKey())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return signed, nil
}

// Verify parses and validates a compact token against the given public key
// and returns its claims. Used by tests and by downstream services that hold
// the tenant's public counterpart key.
func Verify(tokenStr string, pub *rsa.PublicKey) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, err
	}

	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
