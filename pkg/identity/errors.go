package identity

import "errors"

// Closed error set every Provider implementation must translate into.
// Anything the provider reports beyond these is wrapped under
// ErrProviderUnavailable.
var (
	// ErrInvalidCredentials indicates a bad username/password pair.
	ErrInvalidCredentials = errors.New("identity.invalid_credentials")

	// ErrUserNotConfirmed indicates the account signup was never confirmed.
	ErrUserNotConfirmed = errors.New("identity.user_not_confirmed")

	// ErrPasswordResetRequired indicates an administrator forced a reset.
	ErrPasswordResetRequired = errors.New("identity.password_reset_required")

	// ErrMFANotSupported indicates the account requires MFA, which this
	// client does not implement.
	ErrMFANotSupported = errors.New("identity.mfa_not_supported")

	// ErrNotAuthenticated indicates an operation that needs a signed-in
	// provider session was called without one.
	ErrNotAuthenticated = errors.New("identity.not_authenticated")

	// ErrChallengeNotPending indicates ConfirmSignIn was called with no
	// challenge outstanding.
	ErrChallengeNotPending = errors.New("identity.challenge_not_pending")

	// ErrChallengeRejected indicates the challenge response was refused,
	// e.g. the new password failed the provider's policy.
	ErrChallengeRejected = errors.New("identity.challenge_rejected")

	// ErrProviderUnavailable wraps transport-level and unclassified
	// provider failures.
	ErrProviderUnavailable = errors.New("identity.provider_unavailable")
)
