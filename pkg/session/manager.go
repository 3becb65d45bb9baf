package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/campuskit/campuskit/pkg/identity"
	"github.com/campuskit/campuskit/pkg/role"
)

// LoginResult is the tagged outcome of a Login call that did not fail.
type LoginResult struct {
	// RequireNewPassword is set when the provider demands a new password
	// before the sign-in completes. The session is in
	// StatusChallengeRequired and ConfirmChallenge must be called next.
	RequireNewPassword bool
}

// Manager orchestrates the session lifecycle. It exclusively owns the
// in-memory session; all other components read it through Current. Safe
// for concurrent use.
type Manager struct {
	provider identity.Provider
	resolver *role.Resolver
	store    Store
	config   Config
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	session Session
	refresh *refreshCall
}

// refreshCall is the shared record for one in-flight token refresh.
// Concurrent refreshers wait on done and read the same outcome.
type refreshCall struct {
	done chan struct{}
	pair identity.TokenPair
	err  error
}

// New creates a session manager bound to the given identity provider.
func New(provider identity.Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		resolver: role.NewResolver(),
		config:   DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		session:  Session{Status: StatusAnonymous},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}

	return m
}

// Current returns a copy of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.copyForRead()
}

// Status returns the current lifecycle status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Status
}

// IsAuthenticated reports whether a live identity is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.isAuthenticatedAt(m.now())
}

// Login signs the user in with email and password. It returns a
// LoginResult when the attempt progressed (possibly to a challenge), or
// one of the identity package's typed errors when it failed. At most one
// login attempt may be in flight per Manager.
func (m *Manager) Login(ctx context.Context, email, password string) (LoginResult, error) {
	m.mu.Lock()
	switch m.session.Status {
	case StatusAuthenticating, StatusRefreshing:
		m.mu.Unlock()
		return LoginResult{}, ErrLoginInProgress
	case StatusAuthenticated:
		m.mu.Unlock()
		return LoginResult{}, ErrAlreadyAuthenticated
	case StatusError, StatusChallengeRequired:
		// Explicit new attempt resets the previous failure or abandoned
		// challenge back through anonymous.
		m.session = Session{Status: StatusAnonymous}
	}
	if err := m.transitionLocked(StatusAuthenticating); err != nil {
		m.mu.Unlock()
		return LoginResult{}, err
	}
	m.mu.Unlock()

	res, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return LoginResult{}, m.failAuth(err)
	}

	switch res.NextStep {
	case identity.StepNewPasswordRequired:
		m.mu.Lock()
		if err := m.transitionLocked(StatusChallengeRequired); err != nil {
			m.mu.Unlock()
			return LoginResult{}, err
		}
		m.session.PendingChallenge = true
		m.mu.Unlock()
		return LoginResult{RequireNewPassword: true}, nil
	case identity.StepMFARequired:
		return LoginResult{}, m.failAuth(fmt.Errorf("%w: multi-factor authentication is not supported by this client", identity.ErrMFANotSupported))
	case identity.StepResetRequired:
		return LoginResult{}, m.failAuth(identity.ErrPasswordResetRequired)
	case identity.StepConfirmSignUp:
		return LoginResult{}, m.failAuth(identity.ErrUserNotConfirmed)
	}

	if !res.SignedIn {
		return LoginResult{}, m.failAuth(fmt.Errorf("%w: sign-in did not complete", identity.ErrProviderUnavailable))
	}

	if err := m.completeSignIn(ctx, MethodPassword); err != nil {
		return LoginResult{}, m.failAuth(err)
	}
	return LoginResult{}, nil
}

// ConfirmChallenge answers a pending provider challenge with the new
// credential. Valid only while the session is in StatusChallengeRequired.
// A rejection by the provider's credential policy keeps the challenge
// pending so the user can retry inline; any other failure is terminal.
func (m *Manager) ConfirmChallenge(ctx context.Context, newPassword string) error {
	m.mu.Lock()
	if m.session.Status != StatusChallengeRequired {
		m.mu.Unlock()
		return ErrNoChallenge
	}
	if err := m.transitionLocked(StatusAuthenticating); err != nil {
		m.mu.Unlock()
		return err
	}
	m.session.Err = ""
	m.mu.Unlock()

	res, err := m.provider.ConfirmSignIn(ctx, newPassword)
	if err != nil {
		if errors.Is(err, identity.ErrChallengeRejected) {
			m.mu.Lock()
			if terr := m.transitionLocked(StatusChallengeRequired); terr != nil {
				m.mu.Unlock()
				return terr
			}
			m.session.Err = err.Error()
			m.session.PendingChallenge = true
			m.mu.Unlock()
			return err
		}
		return m.failAuth(err)
	}

	if !res.SignedIn {
		return m.failAuth(fmt.Errorf("%w: challenge confirmation did not complete", identity.ErrProviderUnavailable))
	}

	if err := m.completeSignIn(ctx, MethodPassword); err != nil {
		return m.failAuth(err)
	}
	return nil
}

// RefreshSession replaces the token pair. Concurrent calls collapse to a
// single provider round trip; every caller observes the same resulting
// pair. An unrecoverable refresh drops the session to anonymous.
func (m *Manager) RefreshSession(ctx context.Context) (identity.TokenPair, error) {
	m.mu.Lock()
	if c := m.refresh; c != nil {
		m.mu.Unlock()
		select {
		case <-c.done:
			return c.pair, c.err
		case <-ctx.Done():
			return identity.TokenPair{}, ctx.Err()
		}
	}
	if m.session.Status != StatusAuthenticated {
		m.mu.Unlock()
		return identity.TokenPair{}, ErrNotAuthenticated
	}
	if err := m.transitionLocked(StatusRefreshing); err != nil {
		m.mu.Unlock()
		return identity.TokenPair{}, err
	}
	c := &refreshCall{done: make(chan struct{})}
	m.refresh = c
	m.mu.Unlock()

	pair, err := m.provider.FetchAuthSession(ctx, true)

	var snap Snapshot
	m.mu.Lock()
	m.refresh = nil
	if err != nil {
		m.session = Session{Status: StatusAnonymous}
		c.err = err
	} else {
		// The pair is replaced wholesale under the lock; readers never see
		// a half-updated token set.
		m.session.Status = StatusAuthenticated
		m.session.AccessToken = pair.AccessToken
		m.session.IDToken = pair.IDToken
		m.session.ExpiresAt = pair.ExpiresAt
		if pair.RefreshToken != "" {
			// Issuers that rotate refresh tokens hand out a new one here.
			m.session.RefreshToken = pair.RefreshToken
		}
		c.pair = pair
		snap = m.snapshotLocked()
	}
	m.mu.Unlock()
	close(c.done)

	if err != nil {
		m.clearMirror(ctx)
		return identity.TokenPair{}, err
	}
	m.persist(ctx, snap)
	return pair, nil
}

// Logout signs out remotely and clears local state. The local session and
// the durable mirror are cleared even when the remote call fails; that
// failure is logged, not returned, because the user's intent to be logged
// out locally is honored regardless.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.WarnContext(ctx, "remote sign-out failed, clearing local session anyway",
			slog.String("error", err.Error()))
	}

	m.mu.Lock()
	m.session = Session{Status: StatusAnonymous}
	m.mu.Unlock()

	m.clearMirror(ctx)
	return nil
}

// Restore rebuilds the session at process start. It reads the durable
// mirror best-effort: a missing or malformed record is not an error. With
// the trust-snapshot policy enabled a persisted authenticated snapshot is
// accepted directly; otherwise (the safe default) a live verification
// against the provider runs, bounded by Config.RestoreTimeout, and any
// failure settles the session at anonymous. Restore never returns an
// error; it returns the settled session.
func (m *Manager) Restore(ctx context.Context) Session {
	m.mu.Lock()
	if m.session.Status != StatusAnonymous {
		s := m.session.copyForRead()
		m.mu.Unlock()
		return s
	}
	if err := m.transitionLocked(StatusAuthenticating); err != nil {
		s := m.session.copyForRead()
		m.mu.Unlock()
		return s
	}
	m.mu.Unlock()

	snap, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			m.logger.DebugContext(ctx, "session snapshot unusable, verifying live",
				slog.String("error", err.Error()))
		}
	} else {
		// The provider lost its in-memory credentials with the old process;
		// prime it with the mirrored refresh token so verification (or the
		// first refresh after a trusted restore) can reach the issuer.
		if snap.RefreshToken != "" {
			if seeder, ok := m.provider.(identity.RefreshSeeder); ok {
				seeder.SeedRefreshToken(snap.RefreshToken)
			}
		}
		if m.config.TrustSnapshot && m.usableSnapshot(snap) {
			m.mu.Lock()
			m.session = Session{
				User:         snap.User,
				AccessToken:  snap.AccessToken,
				IDToken:      snap.IDToken,
				RefreshToken: snap.RefreshToken,
				ExpiresAt:    snap.ExpiresAt,
				Status:       StatusAuthenticated,
			}
			s := m.session.copyForRead()
			m.mu.Unlock()
			return s
		}
	}

	method := MethodPassword
	if snap.User != nil && snap.User.AuthMethod != "" {
		method = snap.User.AuthMethod
	}

	vctx, cancel := context.WithTimeout(ctx, m.config.RestoreTimeout)
	defer cancel()

	if err := m.completeSignIn(vctx, method); err != nil {
		m.logger.DebugContext(ctx, "session restore verification failed, continuing anonymous",
			slog.String("error", err.Error()))
		m.mu.Lock()
		m.session = Session{Status: StatusAnonymous}
		s := m.session.copyForRead()
		m.mu.Unlock()
		if errors.Is(err, identity.ErrNotAuthenticated) {
			// The provider session is gone for good; the mirror is stale.
			m.clearMirror(ctx)
		}
		return s
	}
	return m.Current()
}

// AccessToken returns a bearer token for API calls, refreshing first when
// the held pair is within RefreshSkew of expiry.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	sess := m.session
	refreshing := m.refresh != nil
	m.mu.Unlock()

	if sess.Status != StatusAuthenticated && !refreshing {
		return "", ErrNotAuthenticated
	}

	nearExpiry := !sess.ExpiresAt.IsZero() && m.now().Add(m.config.RefreshSkew).After(sess.ExpiresAt)
	if nearExpiry || refreshing {
		pair, err := m.RefreshSession(ctx)
		if err != nil {
			return "", err
		}
		return pair.AccessToken, nil
	}
	return sess.AccessToken, nil
}

// RefreshAccessToken forces a refresh and returns the new bearer token.
// Used by the API client after a 401.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	pair, err := m.RefreshSession(ctx)
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// completeSignIn finishes a successful provider sign-in: it fetches the
// token pair and identity, resolves the role, commits the authenticated
// session, and only then mirrors the committed state.
func (m *Manager) completeSignIn(ctx context.Context, method string) error {
	pair, err := m.provider.FetchAuthSession(ctx, false)
	if err != nil {
		return err
	}
	info, err := m.provider.CurrentUser(ctx)
	if err != nil {
		return err
	}
	attrs, err := m.provider.FetchUserAttributes(ctx)
	if err != nil {
		return err
	}

	resolved := m.resolver.Resolve(ctx, info.UserID, pair.Claims, attrs)
	user := buildUser(info, attrs, resolved, method, m.now())

	var snap Snapshot
	m.mu.Lock()
	if err := m.transitionLocked(StatusAuthenticated); err != nil {
		m.mu.Unlock()
		return err
	}
	m.session = Session{
		User:         &user,
		AccessToken:  pair.AccessToken,
		IDToken:      pair.IDToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		Status:       StatusAuthenticated,
	}
	snap = m.snapshotLocked()
	m.mu.Unlock()

	m.persist(ctx, snap)
	return nil
}

// failAuth records a terminal sign-in failure and returns err unchanged.
func (m *Manager) failAuth(err error) error {
	m.mu.Lock()
	m.session = Session{Status: StatusError, Err: err.Error()}
	m.mu.Unlock()
	return err
}

// transitionLocked enforces the state graph. Callers hold m.mu.
func (m *Manager) transitionLocked(to Status) error {
	from := m.session.Status
	if !canTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.session.Status = to
	return nil
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		AccessToken:   m.session.AccessToken,
		IDToken:       m.session.IDToken,
		RefreshToken:  m.session.RefreshToken,
		ExpiresAt:     m.session.ExpiresAt,
		Authenticated: m.session.isAuthenticatedAt(m.now()),
		SavedAt:       m.now(),
	}
	if m.session.User != nil {
		u := *m.session.User
		snap.User = &u
	}
	return snap
}

func (m *Manager) usableSnapshot(snap Snapshot) bool {
	if !snap.Authenticated || snap.User == nil || snap.AccessToken == "" {
		return false
	}
	return snap.ExpiresAt.IsZero() || m.now().Before(snap.ExpiresAt)
}

// persist mirrors committed state; a mirror failure never fails the
// operation that produced it.
func (m *Manager) persist(ctx context.Context, snap Snapshot) {
	if err := m.store.Save(ctx, snap); err != nil {
		m.logger.WarnContext(ctx, "failed to write session mirror",
			slog.String("error", err.Error()))
	}
}

func (m *Manager) clearMirror(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "failed to clear session mirror",
			slog.String("error", err.Error()))
	}
}

func buildUser(info identity.UserInfo, attrs map[string]string, r role.Role, method string, now time.Time) User {
	return User{
		ID:            info.UserID,
		Username:      info.Username,
		Email:         attrs["email"],
		Name:          firstNonEmpty(attrs["name"], attrs["display_name"]),
		Role:          r,
		Avatar:        firstNonEmpty(attrs["picture"], attrs["avatar"]),
		Phone:         firstNonEmpty(attrs["phone_number"], attrs["phone"]),
		EmailVerified: attrs["email_verified"] == "true",
		AuthMethod:    method,
		LastLoginAt:   now,
		CreatedAt:     parseTimeAttr(attrs["created_at"]),
		UpdatedAt:     parseTimeAttr(attrs["updated_at"]),
	}
}

// parseTimeAttr reads a provider timestamp attribute. Providers disagree
// on the format: OIDC updated_at is unix seconds, most profile stores use
// RFC 3339. Unparseable values yield a zero time, which the user record
// omits on serialization.
func parseTimeAttr(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Unix(int64(secs), 0).UTC()
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
