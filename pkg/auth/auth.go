// Package auth implements the credential-to-token authentication pipeline
// and its HTTP boundary.
//
// The Guard middleware extracts the credential header from an inbound
// request and drives parse → resolve → validate → issue, short-circuiting on
// the first failure. All pipeline failures surface to the caller as one
// uniform unauthorized response; logs and counters distinguish the stages
// internally.
package auth

import (
	"errors"
	"time"
)

// Sentinel errors for pipeline outcomes.
var (
	// ErrUnauthenticated means the credential header was absent entirely.
	ErrUnauthenticated = errors.New("credential header missing")

	// ErrInvalidCredentials means the username has no record in the store.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable means the store connection is missing or the
	// lookup/update failed. At the HTTP boundary it is indistinguishable
	// from ErrInvalidCredentials; callers have no actionable difference
	// without leaking infrastructure state.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// Outcome labels one guard invocation for usage counters.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeFailed       Outcome = "failed"
	OutcomeUnauthorized Outcome = "unauthorized"
)

// Recorder receives one best-effort usage count per guard invocation,
// covering the total plus the given category, along with the pipeline
// duration up to that point. Implementations must never block or fail the
// request path.
type Recorder interface {
	Record(o Outcome, elapsed time.Duration)
}
