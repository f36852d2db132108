package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/piarcha/piarka/pkg/userstore"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("piarka_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestFindAndTouchLogin(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.AddUser(ctx, "alice"); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	before := time.Now().Add(-time.Second)

	u, err := store.FindAndTouchLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("FindAndTouchLogin() error = %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Username = %q, want alice", u.Username)
	}
	if !u.LastLogin.After(before) {
		t.Errorf("LastLogin = %v, want after %v", u.LastLogin, before)
	}

	// A second touch moves the timestamp forward.
	first := u.LastLogin
	time.Sleep(10 * time.Millisecond)
	u2, err := store.FindAndTouchLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("second FindAndTouchLogin() error = %v", err)
	}
	if !u2.LastLogin.After(first) {
		t.Errorf("second LastLogin = %v, want after %v", u2.LastLogin, first)
	}
}

func TestFindAndTouchLogin_NotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.FindAndTouchLogin(context.Background(), "nobody")
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFindAndTouchLogin_CanceledContext(t *testing.T) {
	store := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindAndTouchLogin(ctx, "alice")
	if err == nil {
		t.Error("error = nil, want error for canceled context")
	}
	if errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("error = %v, want availability failure, not ErrNotFound", err)
	}
}
