package session

import (
	"context"
	"time"
)

// Snapshot is the durable-mirror record: the minimum needed to restore a
// session without a redundant provider round trip. It is a weak mirror of
// committed state, never a source of truth; tokens inside it are
// re-validated against the provider unless the trust-snapshot policy is
// enabled.
type Snapshot struct {
	User          *User     `json:"user,omitempty"`
	AccessToken   string    `json:"access_token,omitempty"`
	IDToken       string    `json:"id_token,omitempty"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
	Authenticated bool      `json:"authenticated"`
	SavedAt       time.Time `json:"saved_at"`
}

// Store persists a single session snapshot under a fixed key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes the snapshot, replacing any previous record.
	Save(ctx context.Context, snap Snapshot) error

	// Load returns the stored snapshot. ErrSnapshotNotFound when no record
	// exists, ErrSnapshotMalformed when the record cannot be decoded.
	Load(ctx context.Context) (Snapshot, error)

	// Clear removes the record. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
