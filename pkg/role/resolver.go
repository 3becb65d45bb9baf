package role

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// ErrRoleNotFound signals that an external lookup completed but the account
// has no role on record. Any other lookup error is treated the same way
// during resolution: the resolver degrades to the default instead of
// propagating the failure.
var ErrRoleNotFound = errors.New("role.not_found")

// LookupFunc queries an external profile service for a user's role. It is
// the last-resort source for accounts provisioned before a role attribute
// existed.
type LookupFunc func(ctx context.Context, userID string) (Role, error)

// Resolver derives exactly one role from the raw outputs of a successful
// authentication. It is safe for concurrent use.
type Resolver struct {
	claimKey      string
	attributeKeys []string
	lookup        LookupFunc
	logger        *slog.Logger
}

// ResolverOption configures a Resolver during construction.
type ResolverOption func(*Resolver)

// WithClaimKey overrides the token claim key holding the role.
func WithClaimKey(key string) ResolverOption {
	return func(r *Resolver) {
		if key != "" {
			r.claimKey = key
		}
	}
}

// WithAttributeKeys overrides the attribute keys checked for a role value.
// Keys are tried in order; the default includes two historical casings kept
// as a compatibility shim for accounts written before the key was
// normalized.
func WithAttributeKeys(keys ...string) ResolverOption {
	return func(r *Resolver) {
		if len(keys) > 0 {
			r.attributeKeys = keys
		}
	}
}

// WithLookup installs the external fallback lookup.
func WithLookup(fn LookupFunc) ResolverOption {
	return func(r *Resolver) {
		r.lookup = fn
	}
}

// WithLogger configures the logger used to record degraded lookups.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver with the default source keys.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		claimKey: "role",
		// "Role" is the legacy casing used by early account imports.
		attributeKeys: []string{"role", "Role"},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces exactly one role from the given sources.
//
// Precedence, first valid value wins: the token claim (signed by the
// identity provider at session-issue time, most trustworthy), then the user
// attribute (mutable profile data), then a single external lookup attempt,
// then Default. Resolve never returns an error: a failed lookup is logged
// and resolution continues.
func (r *Resolver) Resolve(ctx context.Context, userID string, claims map[string]any, attributes map[string]string) Role {
	if raw, ok := claims[r.claimKey].(string); ok {
		if role, ok := Parse(raw); ok {
			return role
		}
	}

	for _, key := range r.attributeKeys {
		if role, ok := Parse(attributes[key]); ok {
			return role
		}
	}

	if r.lookup != nil {
		role, err := r.lookup(ctx, userID)
		if err == nil && role.IsValid() {
			return role
		}
		if err != nil && !errors.Is(err, ErrRoleNotFound) {
			r.logger.WarnContext(ctx, "external role lookup failed, using default role",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}

	return Default
}
