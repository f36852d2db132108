package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/piarcha/piarka/pkg/credential"
	"github.com/piarcha/piarka/pkg/tenant"
	"github.com/piarcha/piarka/pkg/token"
)

// DefaultHeader is the inbound header carrying the raw credential.
const DefaultHeader = "authorize"

// DefaultBypassEndpoints lists endpoints that skip the guard.
var DefaultBypassEndpoints = []string{"/healthz", "/metrics"}

// Guard is the boundary adapter invoked once per inbound request requiring
// authentication. It owns no cross-request mutable state; the injected
// collaborators are all safe for concurrent use.
type Guard struct {
	header    string
	resolver  tenant.Resolver
	validator *Validator
	issuer    *token.Issuer
	recorder  Recorder
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithHeader overrides the credential header name.
func WithHeader(name string) GuardOption {
	return func(g *Guard) {
		if name != "" {
			g.header = name
		}
	}
}

// WithRecorder sets the usage counter sink. Without one, counts are dropped.
func WithRecorder(r Recorder) GuardOption {
	return func(g *Guard) { g.recorder = r }
}

// NewGuard wires the pipeline stages together.
func NewGuard(resolver tenant.Resolver, validator *Validator, issuer *token.Issuer, opts ...GuardOption) *Guard {
	g := &Guard{
		header:    DefaultHeader,
		resolver:  resolver,
		validator: validator,
		issuer:    issuer,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware wraps next with the authentication pipeline. Requests to a
// bypass endpoint pass through untouched; everything else must carry a
// valid credential header. On success the issued token is injected into the
// request context for downstream handlers.
func (g *Guard) Middleware(bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			// A present-but-empty header is a malformed credential, not a
			// missing one; only a truly absent header counts unauthorized.
			vals := r.Header.Values(g.header)
			if len(vals) == 0 {
				g.record(OutcomeUnauthorized, time.Since(start))
				unauthorized(w)
				return
			}

			cred, err := credential.Parse(vals[0])
			if err != nil {
				g.record(OutcomeFailed, time.Since(start))
				slog.Debug("credential rejected",
					"stage", "parse",
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				unauthorized(w)
				return
			}
			cred = cred.Normalize()

			t := g.resolver.Resolve(r)

			user, err := g.validator.Validate(r.Context(), cred.Username, cred.Password, t)
			if err != nil {
				g.record(OutcomeFailed, time.Since(start))
				slog.Debug("credential rejected",
					"stage", "validate",
					"tenant", t.Name,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				unauthorized(w)
				return
			}

			tok, err := g.issuer.Issue(user.Username, t)
			if err != nil {
				// Keys are vetted at startup, so a per-request signing
				// failure is a server fault, not a client one.
				g.record(OutcomeFailed, time.Since(start))
				slog.Error("token issuance failed",
					"tenant", t.Name,
					"subject", user.Username,
					"error", err,
				)
				http.Error(w, `{"error":{"type":"server_error","message":"token issuance failed"}}`, http.StatusInternalServerError)
				return
			}

			g.record(OutcomeSuccess, time.Since(start))
			slog.Debug("authentication succeeded",
				"subject", user.Username,
				"tenant", t.Name,
			)

			next.ServeHTTP(w, r.WithContext(SetToken(r.Context(), tok)))
		})
	}
}

// record emits one outcome count with the pipeline duration. A nil recorder
// drops it.
func (g *Guard) record(o Outcome, elapsed time.Duration) {
	if g.recorder != nil {
		g.recorder.Record(o, elapsed)
	}
}

// unauthorized writes the uniform rejection response. The body never says
// which pipeline stage failed.
func unauthorized(w http.ResponseWriter) {
	http.Error(w, `{"error":{"type":"unauthorized","message":"authentication required"}}`, http.StatusUnauthorized)
}

// LoginHandler returns the guarded endpoint: its response body is the
// compact token issued for this request.
func LoginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := TokenFromContext(r.Context())
		if tok == "" {
			// Reachable only if the handler is mounted without the guard.
			unauthorized(w)
			return
		}
		w.Header().Set("Content-Type", "application/jwt")
		w.Write([]byte(tok))
	})
}
