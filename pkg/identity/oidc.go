package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig configures the OIDC-backed provider.
type OIDCConfig struct {
	IssuerURL    string   `env:"OIDC_ISSUER_URL,required"`
	ClientID     string   `env:"OIDC_CLIENT_ID,required"`
	ClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	Scopes       []string `env:"OIDC_SCOPES" envDefault:"openid,profile,email"`
}

// extraEndpoints captures discovery fields go-oidc does not expose directly.
type extraEndpoints struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
}

// OIDCProvider implements Provider against any OIDC-compliant issuer that
// supports the resource-owner password grant. Challenge steps such as a
// forced password change are surfaced by such issuers as token-endpoint
// errors, so ConfirmSignIn always reports no pending challenge here;
// providers with an interactive challenge flow implement it themselves.
type OIDCProvider struct {
	oauth      oauth2.Config
	provider   *oidc.Provider
	verifier   *oidc.IDTokenVerifier
	revocation string
	httpClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
	pair  TokenPair
	user  UserInfo
}

// NewOIDCProvider discovers the issuer and builds a provider bound to it.
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: discover issuer: %v", ErrProviderUnavailable, err)
	}

	var extra extraEndpoints
	// Best effort; revocation is optional in discovery documents.
	_ = provider.Claims(&extra)

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	p := &OIDCProvider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		provider:   provider,
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		revocation: extra.RevocationEndpoint,
		httpClient: http.DefaultClient,
	}

	if hc, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && hc != nil {
		p.httpClient = hc
	}

	return p, nil
}

// SignIn exchanges the credentials through the password grant.
func (p *OIDCProvider) SignIn(ctx context.Context, username, password string) (SignInResult, error) {
	tok, err := p.oauth.PasswordCredentialsToken(p.clientContext(ctx), username, password)
	if err != nil {
		return SignInResult{}, translateTokenError(err)
	}

	pair, err := p.buildPair(ctx, tok, TokenPair{})
	if err != nil {
		return SignInResult{}, err
	}

	p.mu.Lock()
	p.token = tok
	p.pair = pair
	p.user = userInfoFromClaims(pair.Claims, username)
	p.mu.Unlock()

	return SignInResult{SignedIn: true}, nil
}

// ConfirmSignIn is unsupported for the password grant; issuers report
// pending account actions as token-endpoint errors instead of challenges.
func (p *OIDCProvider) ConfirmSignIn(ctx context.Context, response string) (SignInResult, error) {
	return SignInResult{}, ErrChallengeNotPending
}

// SeedRefreshToken resumes a session from a refresh token persisted by a
// previous process. The token is held unverified; the next
// FetchAuthSession exchanges it at the issuer, and a rejected exchange
// surfaces as ErrNotAuthenticated.
func (p *OIDCProvider) SeedRefreshToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if token == "" {
		return
	}
	// No access token and no expiry: the token source must hit the issuer
	// before anything is served from memory.
	p.token = &oauth2.Token{RefreshToken: token}
	p.pair = TokenPair{}
	p.user = UserInfo{}
}

// FetchAuthSession returns the current token pair, refreshing it through
// the issuer first when forceRefresh is set or the pair expired.
func (p *OIDCProvider) FetchAuthSession(ctx context.Context, forceRefresh bool) (TokenPair, error) {
	p.mu.Lock()
	tok := p.token
	prev := p.pair
	p.mu.Unlock()

	if tok == nil {
		return TokenPair{}, ErrNotAuthenticated
	}

	if forceRefresh {
		// Expiring the copy forces the token source to hit the issuer.
		expired := *tok
		expired.Expiry = time.Now().Add(-time.Minute)
		tok = &expired
	}

	fresh, err := p.oauth.TokenSource(p.clientContext(ctx), tok).Token()
	if err != nil {
		return TokenPair{}, translateRefreshError(err)
	}

	pair, err := p.buildPair(ctx, fresh, prev)
	if err != nil {
		return TokenPair{}, err
	}

	p.mu.Lock()
	p.token = fresh
	p.pair = pair
	if pair.Claims != nil {
		// A seeded session has no identity until the issuer returns a
		// verified ID token; recover it from the refreshed claims.
		p.user = userInfoFromClaims(pair.Claims, p.user.Username)
	}
	p.mu.Unlock()

	return pair, nil
}

// CurrentUser returns identifiers decoded from the verified ID token.
func (p *OIDCProvider) CurrentUser(ctx context.Context) (UserInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token == nil {
		return UserInfo{}, ErrNotAuthenticated
	}
	return p.user, nil
}

// FetchUserAttributes queries the issuer's UserInfo endpoint.
func (p *OIDCProvider) FetchUserAttributes(ctx context.Context) (map[string]string, error) {
	p.mu.Lock()
	tok := p.token
	p.mu.Unlock()

	if tok == nil {
		return nil, ErrNotAuthenticated
	}

	info, err := p.provider.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo: %v", ErrProviderUnavailable, err)
	}

	var raw map[string]any
	if err := info.Claims(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrProviderUnavailable, err)
	}

	attrs := make(map[string]string, len(raw))
	for k, v := range raw {
		attrs[k] = stringifyClaim(v)
	}
	return attrs, nil
}

// SignOut revokes the refresh token when the issuer advertises a
// revocation endpoint, then drops the local provider session regardless.
func (p *OIDCProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	tok := p.token
	p.token = nil
	p.pair = TokenPair{}
	p.user = UserInfo{}
	p.mu.Unlock()

	if tok == nil || p.revocation == "" || tok.RefreshToken == "" {
		return nil
	}

	form := url.Values{
		"token":           {tok.RefreshToken},
		"token_type_hint": {"refresh_token"},
		"client_id":       {p.oauth.ClientID},
	}
	if p.oauth.ClientSecret != "" {
		form.Set("client_secret", p.oauth.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocation, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: revoke request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: revoke: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: revoke: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// buildPair verifies the ID token (when present) and assembles a pair.
// Issuers may omit the ID token on refresh responses; the previous pair's
// identity claims carry over in that case.
func (p *OIDCProvider) buildPair(ctx context.Context, tok *oauth2.Token, prev TokenPair) (TokenPair, error) {
	pair := TokenPair{
		AccessToken:  tok.AccessToken,
		IDToken:      prev.IDToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		Claims:       prev.Claims,
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		if pair.IDToken == "" {
			return TokenPair{}, fmt.Errorf("%w: issuer returned no id_token", ErrProviderUnavailable)
		}
		return pair, nil
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: verify id_token: %v", ErrProviderUnavailable, err)
	}

	claims := make(map[string]any)
	if err := idToken.Claims(&claims); err != nil {
		return TokenPair{}, fmt.Errorf("%w: decode id_token claims: %v", ErrProviderUnavailable, err)
	}

	pair.IDToken = rawIDToken
	pair.Claims = claims
	return pair, nil
}

func (p *OIDCProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func userInfoFromClaims(claims map[string]any, fallback string) UserInfo {
	info := UserInfo{Username: fallback}
	if sub, ok := claims["sub"].(string); ok {
		info.UserID = sub
	}
	if name, ok := claims["preferred_username"].(string); ok && name != "" {
		info.Username = name
	}
	return info
}

// translateTokenError maps token-endpoint failures during sign-in onto the
// package's closed error set. Issuer wording varies, so classification is
// by description substring with invalid_grant as the credential fallback.
func translateTokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	desc := strings.ToLower(rerr.ErrorDescription)
	switch {
	case strings.Contains(desc, "not fully set up"):
		return fmt.Errorf("%w: %s", ErrPasswordResetRequired, rerr.ErrorDescription)
	case strings.Contains(desc, "not verified"), strings.Contains(desc, "not confirmed"):
		return fmt.Errorf("%w: %s", ErrUserNotConfirmed, rerr.ErrorDescription)
	case strings.Contains(desc, "otp"), strings.Contains(desc, "second factor"), strings.Contains(desc, "mfa"):
		return fmt.Errorf("%w: %s", ErrMFANotSupported, rerr.ErrorDescription)
	case rerr.ErrorCode == "invalid_grant", rerr.ErrorCode == "unauthorized_client":
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, rerr.ErrorDescription)
	}
	return fmt.Errorf("%w: %s %s", ErrProviderUnavailable, rerr.ErrorCode, rerr.ErrorDescription)
}

// translateRefreshError maps refresh failures; a rejected refresh token
// means the provider session is gone, not that credentials were wrong.
func translateRefreshError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant" {
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, rerr.ErrorDescription)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

func stringifyClaim(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
