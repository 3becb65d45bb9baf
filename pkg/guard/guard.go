package guard

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/campuskit/campuskit/pkg/role"
	"github.com/campuskit/campuskit/pkg/session"
)

// ErrInvalidPolicy indicates a policy document that cannot be enforced.
var ErrInvalidPolicy = errors.New("guard.invalid_policy")

// SessionSource exposes the session state the guard decides on. Satisfied
// by *session.Manager.
type SessionSource interface {
	Current() session.Session
}

// Guard enforces a Policy against the current session.
type Guard struct {
	sessions SessionSource
	policy   Policy
	logger   *slog.Logger
	waiting  http.Handler
}

// GuardOption configures a Guard during construction.
type GuardOption func(*Guard)

// WithLogger sets the logger for redirect decisions.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithWaitingHandler replaces the default waiting page served while the
// session is still being established.
func WithWaitingHandler(h http.Handler) GuardOption {
	return func(g *Guard) {
		if h != nil {
			g.waiting = h
		}
	}
}

// New creates a guard for the given session source and policy.
func New(sessions SessionSource, policy Policy, opts ...GuardOption) *Guard {
	g := &Guard{
		sessions: sessions,
		policy:   policy,
		logger:   slog.Default(),
		waiting:  http.HandlerFunc(defaultWaitingPage),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Protect returns middleware admitting only the given roles. The resolved
// role is injected into the request context for downstream handlers.
func (g *Guard) Protect(allowed ...role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := g.sessions.Current()

			// No navigation and no protected content until the session
			// settles; the client retries via the waiting page.
			if !sess.Status.Settled() {
				g.waiting.ServeHTTP(w, r)
				return
			}

			if !sess.IsAuthenticated() {
				http.Redirect(w, r, g.policy.LoginPath, http.StatusSeeOther)
				return
			}

			userRole := sess.User.Role
			if !slices.Contains(allowed, userRole) {
				g.logger.DebugContext(r.Context(), "role outside allowed set, redirecting to landing",
					slog.String("path", r.URL.Path),
					slog.String("role", userRole.String()))
				http.Redirect(w, r, g.policy.LandingFor(userRole), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(role.WithRole(r.Context(), userRole)))
		})
	}
}

// Mount wires every policy group onto the router, wrapping h with the
// group's role restriction under its prefix.
func (g *Guard) Mount(r chi.Router, h http.Handler) {
	for _, group := range g.policy.Groups {
		protect := g.Protect(group.allowedRoles()...)
		r.Route(group.Prefix, func(r chi.Router) {
			r.Use(protect)
			r.Handle("/*", h)
		})
	}
}

// defaultWaitingPage is deliberately non-interactive: it retries itself
// until the session settles, never rendering protected content.
func defaultWaitingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!doctype html><html><head><meta http-equiv="refresh" content="1"><title>Loading</title></head><body>Checking your session&hellip;</body></html>`))
}
