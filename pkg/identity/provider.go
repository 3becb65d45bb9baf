package identity

import (
	"context"
	"time"
)

// Step identifies an additional action the provider requires before a
// sign-in is considered complete.
type Step string

const (
	// StepNone means the sign-in completed without further action.
	StepNone Step = ""

	// StepNewPasswordRequired means the account must set a new password
	// before the sign-in completes. Resolved via ConfirmSignIn.
	StepNewPasswordRequired Step = "new_password_required"

	// StepResetRequired means the account password was force-reset by an
	// administrator and must be recovered out of band.
	StepResetRequired Step = "reset_required"

	// StepConfirmSignUp means the account was never confirmed after signup.
	StepConfirmSignUp Step = "confirm_sign_up"

	// StepMFARequired means the account has MFA enabled. The client does
	// not support MFA; the session layer surfaces this as a typed error.
	StepMFARequired Step = "mfa_required"
)

// SignInResult is the tagged outcome of SignIn or ConfirmSignIn.
type SignInResult struct {
	SignedIn bool
	NextStep Step
}

// TokenPair holds the bearer credentials issued for a session. Claims are
// decoded from the verified ID token and feed role resolution. A pair is
// always replaced wholesale, never field by field. RefreshToken is set
// when the provider issues one; it is the only credential that survives a
// process restart.
type TokenPair struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
	Claims       map[string]any
}

// Expired reports whether the pair is past its expiry, with a small skew
// allowance so callers refresh slightly before the hard deadline.
func (p TokenPair) Expired(skew time.Duration) bool {
	if p.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(skew).After(p.ExpiresAt)
}

// UserInfo is the minimal identity record returned by CurrentUser.
type UserInfo struct {
	UserID   string
	Username string
}

// Provider is the narrow identity-provider contract consumed by the
// session layer. All operations are blocking and context-aware; every
// failure is one of the sentinel errors declared in this package, possibly
// wrapped with provider detail.
type Provider interface {
	// SignIn exchanges credentials for a signed-in session or a next step.
	SignIn(ctx context.Context, username, password string) (SignInResult, error)

	// ConfirmSignIn answers a pending challenge (e.g. supplies the new
	// password after StepNewPasswordRequired).
	ConfirmSignIn(ctx context.Context, response string) (SignInResult, error)

	// FetchAuthSession returns the current token pair, refreshing it first
	// when forceRefresh is set.
	FetchAuthSession(ctx context.Context, forceRefresh bool) (TokenPair, error)

	// CurrentUser returns the signed-in user's identifiers.
	CurrentUser(ctx context.Context) (UserInfo, error)

	// FetchUserAttributes returns the signed-in user's profile attributes.
	FetchUserAttributes(ctx context.Context) (map[string]string, error)

	// SignOut revokes the provider-side session.
	SignOut(ctx context.Context) error
}

// RefreshSeeder is implemented by providers that can resume a session from
// a persisted refresh token after a process restart. The seeded token is
// not trusted until the next FetchAuthSession exchanges it at the issuer.
type RefreshSeeder interface {
	SeedRefreshToken(token string)
}
