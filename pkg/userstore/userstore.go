// Package userstore defines the user store collaborator contract: a lookup
// by username that records the login timestamp in the same operation.
//
// Store implementations (memory, postgres, mongo) live in subpackages. This
// package holds only the shared record type, the interface, and sentinel
// errors.
package userstore

import (
	"context"
	"errors"
	"time"
)

// User is the stored record as seen by the authentication pipeline.
type User struct {
	Username  string
	LastLogin time.Time
}

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no record matches the username.
	ErrNotFound = errors.New("user not found")

	// ErrUnavailable is returned when the store cannot be reached or the
	// lookup/update failed.
	ErrUnavailable = errors.New("user store unavailable")
)

// Store is the query contract used by the validator.
//
// FindAndTouchLogin looks up a user by username and sets its last-login
// timestamp atomically with the lookup. Implementations must be safe for
// concurrent use by many in-flight validations and must honor context
// cancellation and deadlines.
type Store interface {
	FindAndTouchLogin(ctx context.Context, username string) (*User, error)
}
