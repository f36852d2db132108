// Package memory provides an in-memory user store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/piarcha/piarka/pkg/userstore"
)

// Store is a mutex-guarded map of users keyed by username.
type Store struct {
	mu    sync.Mutex
	users map[string]userstore.User

	// now is swappable for tests.
	now func() time.Time
}

// Ensure Store implements userstore.Store at compile time.
var _ userstore.Store = (*Store)(nil)

// New creates a store pre-populated with the given usernames.
func New(usernames ...string) *Store {
	s := &Store{
		users: make(map[string]userstore.User, len(usernames)),
		now:   time.Now,
	}
	for _, u := range usernames {
		s.users[u] = userstore.User{Username: u}
	}
	return s
}

// Add inserts or resets a user record.
func (s *Store) Add(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = userstore.User{Username: username}
}

// FindAndTouchLogin looks up username and stamps its last login.
func (s *Store) FindAndTouchLogin(ctx context.Context, username string) (*userstore.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, userstore.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, userstore.ErrNotFound
	}

	u.LastLogin = s.now().UTC()
	s.users[username] = u

	out := u
	return &out, nil
}
