package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, PIARKA_CONFIG env, ./config.yaml,
//     /etc/piarka/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. PIARKA_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/piarka/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check PIARKA_CONFIG env var.
	if envPath := os.Getenv("PIARKA_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/piarka/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. MONGODB is
// the legacy connection-string variable the original deployment used; setting
// it selects the mongo store.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIARKA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PIARKA_STORE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("PIARKA_POSTGRES_DSN"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("PIARKA_MONGO_URI"); v != "" {
		cfg.Store.Mongo.URI = v
	}
	if v := os.Getenv("PIARKA_AUTH_HEADER"); v != "" {
		cfg.Auth.Header = v
	}
	if v := os.Getenv("PIARKA_DEBUG_BYPASS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.DebugBypass = b
		}
	}
	if v := os.Getenv("PIARKA_STATSD_ADDR"); v != "" {
		cfg.Metrics.Statsd.Address = v
	}

	// Legacy env var mapping.
	if v := os.Getenv("MONGODB"); v != "" {
		cfg.Store.Type = "mongo"
		cfg.Store.Mongo.URI = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// store.postgres.dsn_file -> store.postgres.dsn
	if cfg.Store.Postgres.DSNFile != "" && cfg.Store.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Store.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("store.postgres.dsn_file: %w", err)
		}
		cfg.Store.Postgres.DSN = val
	}

	// store.mongo.uri_file -> store.mongo.uri
	if cfg.Store.Mongo.URIFile != "" && cfg.Store.Mongo.URI == "" {
		val, err := readSecretFile(cfg.Store.Mongo.URIFile)
		if err != nil {
			return fmt.Errorf("store.mongo.uri_file: %w", err)
		}
		cfg.Store.Mongo.URI = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
