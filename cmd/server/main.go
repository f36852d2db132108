// Command server runs the piarka credential-to-token issuance service.
//
// A .env file in the working directory is loaded first, then configuration
// follows the layered scheme in pkg/config:
//
//	PIARKA_CONFIG       - path to config.yaml (also -config flag)
//	PIARKA_PORT         - listen port
//	PIARKA_STORE        - user store type: "memory", "postgres", or "mongo"
//	PIARKA_POSTGRES_DSN - PostgreSQL connection string
//	PIARKA_MONGO_URI    - MongoDB connection string
//	MONGODB             - legacy: MongoDB connection string, selects the mongo store
//	PIARKA_AUTH_HEADER  - credential header name
//	PIARKA_STATSD_ADDR  - statsd UDP address (empty disables)
//	PIARKA_DEBUG_BYPASS - enable the diagnostic credential bypass
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cactus/go-statsd-client/v5/statsd"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/piarcha/piarka/pkg/auth"
	"github.com/piarcha/piarka/pkg/config"
	"github.com/piarcha/piarka/pkg/observability"
	"github.com/piarcha/piarka/pkg/tenant"
	"github.com/piarcha/piarka/pkg/token"
	"github.com/piarcha/piarka/pkg/transport"
	"github.com/piarcha/piarka/pkg/userstore"
	"github.com/piarcha/piarka/pkg/userstore/memory"
	"github.com/piarcha/piarka/pkg/userstore/mongo"
	"github.com/piarcha/piarka/pkg/userstore/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Tenant key material. Unreadable keys are fatal before serving.
	tenantConfigs := make([]tenant.Config, 0, len(cfg.Tenants.Entries))
	for _, t := range cfg.Tenants.Entries {
		tenantConfigs = append(tenantConfigs, tenant.Config{
			Name:    t.Name,
			Company: t.Company,
			KeyFile: t.KeyFile,
		})
	}
	keyring, err := tenant.Load(tenantConfigs)
	if err != nil {
		return fmt.Errorf("loading tenant keys: %w", err)
	}

	resolver, err := tenant.NewStaticResolver(keyring, cfg.Tenants.Default)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating user store: %w", err)
	}
	defer closeStore()

	// Usage counters. A dead statsd address only loses counters, never requests.
	var statter statsd.Statter
	if addr := cfg.Metrics.Statsd.Address; addr != "" {
		statter, err = observability.NewStatsdClient(addr, cfg.Metrics.Statsd.Namespace)
		if err != nil {
			slog.Warn("statsd disabled", "addr", addr, "error", err)
			statter = nil
		} else {
			defer statter.Close()
			slog.Info("statsd enabled", "addr", addr, "namespace", cfg.Metrics.Statsd.Namespace)
		}
	}
	recorder := observability.NewRecorder(statter)

	validator := auth.NewValidator(store,
		auth.WithQueryTimeout(cfg.Store.QueryTimeout),
		auth.WithDebugBypass(cfg.Auth.DebugBypass),
	)
	if cfg.Auth.DebugBypass {
		slog.Warn("diagnostic credential bypass enabled; do not run in production")
	}

	issuer := token.New(cfg.Auth.TokenTTL)

	guard := auth.NewGuard(resolver, validator, issuer,
		auth.WithHeader(cfg.Auth.Header),
		auth.WithRecorder(recorder),
	)

	// Routes.
	mux := http.NewServeMux()
	mux.Handle("GET /login", auth.LoginHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	bypass := []string{"/healthz"}
	if cfg.Metrics.Prometheus.Enabled {
		mux.Handle("GET "+cfg.Metrics.Prometheus.Path, promhttp.Handler())
		bypass = append(bypass, cfg.Metrics.Prometheus.Path)
	}

	handler := transport.Chain(
		transport.Recovery(logger),
		transport.RequestID(),
		transport.Logging(logger),
		observability.MetricsMiddleware,
		guard.Middleware(bypass),
	)(mux)

	srv := transport.NewServer(handler,
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transport.WithLogger(logger),
	)

	slog.Info("token service configured",
		"store", cfg.Store.Type,
		"default_tenant", cfg.Tenants.Default,
		"token_ttl", cfg.Auth.TokenTTL,
	)

	return srv.ListenAndServe()
}

// newStore builds the configured user store and returns it with its cleanup.
func newStore(ctx context.Context, cfg *config.Config) (userstore.Store, func(), error) {
	switch cfg.Store.Type {
	case "memory":
		slog.Info("using in-memory user store; users do not persist")
		return memory.New(), func() {}, nil

	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Store.Postgres.DSN,
			MaxConns:       cfg.Store.Postgres.MaxConns,
			MigrateOnStart: cfg.Store.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "mongo":
		store, err := mongo.New(ctx, mongo.Config{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}, nil

	default:
		// Unreachable after config validation.
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}
