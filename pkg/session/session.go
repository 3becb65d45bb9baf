package session

import (
	"time"

	"github.com/campuskit/campuskit/pkg/role"
)

// Login method identifiers recorded on the user.
const (
	MethodPassword  = "password"
	MethodFederated = "federated"
)

// User is the normalized account record assembled from the identity
// provider's claims and attributes after a successful sign-in.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          role.Role `json:"role"`
	Avatar        string    `json:"avatar,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	AuthMethod    string    `json:"auth_method"`
	LastLoginAt   time.Time `json:"last_login_at"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// Session is the in-memory representation of the current identity. Values
// returned by Manager.Current are copies; mutating them has no effect on
// the manager's state.
type Session struct {
	User        *User
	AccessToken string
	IDToken     string
	ExpiresAt   time.Time
	Status      Status

	// RefreshToken is the long-lived credential used to obtain new pairs.
	// It is mirrored to the durable store so the session can be resumed
	// after a process restart.
	RefreshToken string

	// Err holds the last failed operation's message. Cleared on the next
	// explicit attempt.
	Err string

	// PendingChallenge is set while the provider requires one more step
	// before the sign-in may complete.
	PendingChallenge bool
}

// IsAuthenticated reports whether the session holds a live identity: an
// authenticated status, a user and an unexpired access token.
func (s Session) IsAuthenticated() bool {
	return s.isAuthenticatedAt(time.Now())
}

// isAuthenticatedAt evaluates the same predicate against an explicit
// instant. The manager routes its injected clock through here so expiry
// behavior stays deterministic under test.
func (s Session) isAuthenticatedAt(now time.Time) bool {
	if s.Status != StatusAuthenticated || s.User == nil || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// copyForRead returns a defensive copy safe to hand to callers.
func (s Session) copyForRead() Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
