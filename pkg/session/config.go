package session

import "time"

// Config holds session manager configuration.
type Config struct {
	// RestoreTimeout bounds the live verification performed on restore so
	// an unreachable provider cannot hold the app in a loading state.
	RestoreTimeout time.Duration `env:"SESSION_RESTORE_TIMEOUT" envDefault:"10s"`

	// TrustSnapshot enables the fast path: a persisted authenticated
	// snapshot is accepted without a live provider check. Off by default;
	// always-verify is the safe policy.
	TrustSnapshot bool `env:"SESSION_TRUST_SNAPSHOT" envDefault:"false"`

	// RefreshSkew is how long before hard token expiry AccessToken starts
	// refreshing proactively.
	RefreshSkew time.Duration `env:"SESSION_REFRESH_SKEW" envDefault:"30s"`
}

// DefaultConfig returns default session manager configuration.
func DefaultConfig() Config {
	return Config{
		RestoreTimeout: 10 * time.Second,
		TrustSnapshot:  false,
		RefreshSkew:    30 * time.Second,
	}
}
