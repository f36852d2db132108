// Package tenant holds the closed set of signing tenants and the request
// resolution seam.
//
// Each tenant carries a company identifier (embedded in issued claims) and
// an RSA private key loaded once at process start. Key material is read-only
// after Load and needs no locking.
package tenant

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Tenant is a named business context with its own signing key.
// Tenants are immutable after construction.
type Tenant struct {
	Name    string
	Company string

	key *rsa.PrivateKey
}

// New constructs a tenant from an already-parsed key. Used by tests and by
// callers that manage key material themselves; production tenants come from
// Load.
func New(name, company string, key *rsa.PrivateKey) *Tenant {
	return &Tenant{Name: name, Company: company, key: key}
}

// SigningKey returns the tenant's private signing key.
func (t *Tenant) SigningKey() *rsa.PrivateKey { return t.key }

// Config describes one tenant to load at startup.
type Config struct {
	Name    string
	Company string
	KeyFile string // path to a PEM-encoded RSA private key
}

// Keyring is the process-wide tenant set, read-only after Load.
type Keyring struct {
	tenants map[string]*Tenant
}

// Load reads and parses every tenant's PEM key file. A missing or malformed
// key is a startup failure, never a per-request one.
func Load(configs []Config) (*Keyring, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no tenants configured")
	}

	tenants := make(map[string]*Tenant, len(configs))
	for _, c := range configs {
		pemBytes, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tenant %q: reading key file: %w", c.Name, err)
		}

		key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("tenant %q: parsing key: %w", c.Name, err)
		}

		tenants[c.Name] = New(c.Name, c.Company, key)
	}

	return &Keyring{tenants: tenants}, nil
}

// Get returns the named tenant, or false if it is not in the keyring.
func (k *Keyring) Get(name string) (*Tenant, bool) {
	t, ok := k.tenants[name]
	return t, ok
}

// Resolver maps an inbound request to a tenant.
//
// The data model supports multiple tenants, but no request attribute drives
// selection yet; which attribute should (header, path, subdomain) is still
// open. The interface is the seam for that decision.
type Resolver interface {
	Resolve(r *http.Request) *Tenant
}

// StaticResolver resolves every request to the same tenant.
type StaticResolver struct {
	tenant *Tenant
}

// NewStaticResolver pins resolution to the named tenant in the keyring.
func NewStaticResolver(k *Keyring, name string) (*StaticResolver, error) {
	t, ok := k.Get(name)
	if !ok {
		return nil, fmt.Errorf("default tenant %q not in keyring", name)
	}
	return &StaticResolver{tenant: t}, nil
}

// Resolve returns the pinned tenant regardless of request content.
func (s *StaticResolver) Resolve(*http.Request) *Tenant { return s.tenant }
