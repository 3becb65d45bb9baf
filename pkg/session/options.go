package session

import (
	"log/slog"
	"time"

	"github.com/campuskit/campuskit/pkg/role"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets the durable mirror store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithResolver sets a custom role resolver.
func WithResolver(resolver *role.Resolver) Option {
	return func(m *Manager) {
		if resolver != nil {
			m.resolver = resolver
		}
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithLogger sets the logger used for degraded-path reporting (failed
// remote sign-out, mirror write failures, restore fallbacks).
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRestoreTimeout overrides the restore verification bound.
func WithRestoreTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.config.RestoreTimeout = d
		}
	}
}

// WithTrustSnapshot toggles the restore fast path that accepts a persisted
// authenticated snapshot without a live provider check.
func WithTrustSnapshot(trust bool) Option {
	return func(m *Manager) {
		m.config.TrustSnapshot = trust
	}
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
