// Package config provides unified configuration for the piarka token service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (PIARKA_ prefix, plus the legacy
//     MONGODB connection-string variable)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the token service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Tenants TenantsConfig `yaml:"tenants"`
	Auth    AuthConfig    `yaml:"auth"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 10s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// StoreConfig holds user store settings.
type StoreConfig struct {
	Type         string         `yaml:"type"`          // "memory", "postgres", or "mongo", default: "memory"
	QueryTimeout time.Duration  `yaml:"query_timeout"` // per-lookup bound, default: 5s
	Postgres     PostgresConfig `yaml:"postgres"`
	Mongo        MongoConfig    `yaml:"mongo"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// MongoConfig holds MongoDB-specific settings.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	URIFile    string `yaml:"uri_file"` // _file variant for uri
	Database   string `yaml:"database"`   // default: "piarka"
	Collection string `yaml:"collection"` // default: "users"
}

// TenantsConfig holds the closed tenant set and the default selection.
type TenantsConfig struct {
	// Default names the tenant every request resolves to until a
	// selection attribute is wired up.
	Default string         `yaml:"default"`
	Entries []TenantConfig `yaml:"entries"`
}

// TenantConfig describes a single tenant.
type TenantConfig struct {
	Name    string `yaml:"name"`
	Company string `yaml:"company"`
	KeyFile string `yaml:"key_file"` // PEM-encoded RSA private key
}

// AuthConfig holds authentication pipeline settings.
type AuthConfig struct {
	Header   string        `yaml:"header"`    // credential header name, default: "authorize"
	TokenTTL time.Duration `yaml:"token_ttl"` // default: 15m

	// DebugBypass enables the testuser/testpass diagnostic credential.
	// Never enable in production.
	DebugBypass bool `yaml:"debug_bypass"` // default: false
}

// MetricsConfig holds monitoring settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Statsd     StatsdConfig     `yaml:"statsd"`
}

// PrometheusConfig holds the scrape endpoint settings.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// StatsdConfig holds the UDP counter transport settings. An empty address
// disables the statsd sink.
type StatsdConfig struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"` // default: "piarka_token_service"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Type:         "memory",
			QueryTimeout: 5 * time.Second,
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
			Mongo: MongoConfig{
				Database:   "piarka",
				Collection: "users",
			},
		},
		Auth: AuthConfig{
			Header:   "authorize",
			TokenTTL: 15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Prometheus: PrometheusConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Statsd: StatsdConfig{
				Namespace: "piarka_token_service",
			},
		},
	}
}
