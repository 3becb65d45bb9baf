package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/pkg/role"
)

// TokenSource supplies bearer tokens for outgoing requests. Satisfied by
// *session.Manager.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Config holds API client configuration.
type Config struct {
	BaseURL string        `env:"API_BASE_URL,required"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
}

// Client is a bearer-authenticated JSON client for the LMS backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the given base URL and token source.
func New(cfg Config, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the backend's response wrapper. Endpoints are inconsistent
// about the field name, so both are accepted.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

// Get fetches path and decodes the enveloped payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the enveloped payload into out.
// Both body and out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as JSON and decodes the enveloped payload into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	resp, err := c.send(ctx, method, path, body, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		// The token may have just expired; refresh once and retry.
		token, err = c.tokens.RefreshAccessToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: refresh failed: %v", ErrUnauthorized, err)
		}
		resp, err = c.send(ctx, method, path, body, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	return decodeEnvelope(resp.Body, out)
}

func (c *Client) send(ctx context.Context, method, path string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func decodeEnvelope(r io.Reader, out any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		switch {
		case env.Data != nil:
			raw = env.Data
		case env.Results != nil:
			raw = env.Results
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

// RoleLookup adapts the client into the role resolver's external fallback:
// it fetches the user's profile record and reads its role field.
func RoleLookup(c *Client) role.LookupFunc {
	return func(ctx context.Context, userID string) (role.Role, error) {
		var profile struct {
			Role string `json:"role"`
		}
		if err := c.Get(ctx, "/users/"+userID, &profile); err != nil {
			return "", err
		}
		r, ok := role.Parse(profile.Role)
		if !ok {
			return "", role.ErrRoleNotFound
		}
		return r, nil
	}
}
