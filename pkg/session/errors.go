package session

import "errors"

var (
	// ErrLoginInProgress indicates Login was called while another sign-in
	// attempt was still in flight.
	ErrLoginInProgress = errors.New("session.login_in_progress")

	// ErrNoChallenge indicates ConfirmChallenge was called without a
	// pending provider challenge.
	ErrNoChallenge = errors.New("session.no_pending_challenge")

	// ErrAlreadyAuthenticated indicates Login was called on a live
	// session. Log out first.
	ErrAlreadyAuthenticated = errors.New("session.already_authenticated")

	// ErrNotAuthenticated indicates an operation that needs a live session
	// was called without one.
	ErrNotAuthenticated = errors.New("session.not_authenticated")

	// ErrInvalidTransition indicates an illegal state-machine move. Seeing
	// it means a bug in the manager, not in the caller.
	ErrInvalidTransition = errors.New("session.invalid_transition")

	// ErrSnapshotNotFound indicates the durable mirror holds no record.
	ErrSnapshotNotFound = errors.New("session.snapshot_not_found")

	// ErrSnapshotMalformed indicates the durable mirror record could not
	// be decoded. Restore treats it the same as a missing record.
	ErrSnapshotMalformed = errors.New("session.snapshot_malformed")
)
