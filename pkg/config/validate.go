package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// store.type must be a known value.
	switch c.Store.Type {
	case "memory", "postgres", "mongo":
		// valid
	default:
		errs = append(errs, fmt.Errorf("store.type must be \"memory\", \"postgres\", or \"mongo\", got %q", c.Store.Type))
	}

	// Non-memory stores need a connection string.
	if c.Store.Type == "postgres" {
		if c.Store.Postgres.DSN == "" && c.Store.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("store.postgres.dsn or store.postgres.dsn_file is required when store.type is \"postgres\""))
		}
	}
	if c.Store.Type == "mongo" {
		if c.Store.Mongo.URI == "" && c.Store.Mongo.URIFile == "" {
			errs = append(errs, fmt.Errorf("store.mongo.uri or store.mongo.uri_file is required when store.type is \"mongo\""))
		}
	}

	// At least one tenant, each fully specified.
	if len(c.Tenants.Entries) == 0 {
		errs = append(errs, fmt.Errorf("tenants.entries must list at least one tenant"))
	}
	names := make(map[string]bool, len(c.Tenants.Entries))
	for i, t := range c.Tenants.Entries {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("tenants.entries[%d].name is required", i))
		}
		if t.Company == "" {
			errs = append(errs, fmt.Errorf("tenants.entries[%d].company is required", i))
		}
		if t.KeyFile == "" {
			errs = append(errs, fmt.Errorf("tenants.entries[%d].key_file is required", i))
		}
		names[t.Name] = true
	}

	// tenants.default must name a listed tenant.
	if c.Tenants.Default == "" {
		errs = append(errs, fmt.Errorf("tenants.default is required"))
	} else if len(c.Tenants.Entries) > 0 && !names[c.Tenants.Default] {
		errs = append(errs, fmt.Errorf("tenants.default %q does not name a listed tenant", c.Tenants.Default))
	}

	// auth.token_ttl must be positive.
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be > 0, got %v", c.Auth.TokenTTL))
	}

	return errors.Join(errs...)
}
