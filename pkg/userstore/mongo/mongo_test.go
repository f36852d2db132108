package mongo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

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

// setupTestDB starts a MongoDB container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping MongoDB integration tests")
	}

	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("skipping: could not start MongoDB container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{URI: uri, Database: "piarka_test"})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store.Close(closeCtx)
	})

	return store
}

// seedUser inserts a user document without a lastLogin field.
func seedUser(t *testing.T, store *Store, username string) {
	t.Helper()
	if _, err := store.users.InsertOne(context.Background(), bson.M{"username": username}); err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}
}

func TestFindAndTouchLogin(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, store, "alice")

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

func TestFindAndTouchLogin_PersistsLastLogin(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	seedUser(t, store, "bob")

	u, err := store.FindAndTouchLogin(ctx, "bob")
	if err != nil {
		t.Fatalf("FindAndTouchLogin() error = %v", err)
	}

	// The returned document reflects the update, and the update is stored.
	var doc userDoc
	if err := store.users.FindOne(ctx, bson.M{"username": "bob"}).Decode(&doc); err != nil {
		t.Fatalf("reading back user: %v", err)
	}
	if doc.LastLogin.IsZero() {
		t.Error("stored lastLogin is zero, want the touched timestamp")
	}
	if got, want := doc.LastLogin.Truncate(time.Millisecond), u.LastLogin.Truncate(time.Millisecond); !got.Equal(want) {
		t.Errorf("stored lastLogin = %v, want returned value %v", got, want)
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
