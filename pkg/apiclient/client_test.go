package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campuskit/pkg/apiclient"
	"github.com/campuskit/campuskit/pkg/role"
)

// staticTokens is a TokenSource with a swappable current token.
type staticTokens struct {
	token     atomic.Value
	refreshed atomic.Int64
	fail      bool
}

func newStaticTokens(token string) *staticTokens {
	s := &staticTokens{}
	s.token.Store(token)
	return s
}

func (s *staticTokens) AccessToken(ctx context.Context) (string, error) {
	if s.fail {
		return "", errors.New("no session")
	}
	return s.token.Load().(string), nil
}

func (s *staticTokens) RefreshAccessToken(ctx context.Context) (string, error) {
	s.refreshed.Add(1)
	s.token.Store("fresh-token")
	return "fresh-token", nil
}

type subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestClient_EnvelopeDecoding(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/subjects":
			_, _ = w.Write([]byte(`{"results":[{"id":"s1","name":"Databases"},{"id":"s2","name":"Networks"}]}`))
		case "/subjects/s1":
			_, _ = w.Write([]byte(`{"data":{"id":"s1","name":"Databases"}}`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, newStaticTokens("tok"))
	ctx := context.Background()

	t.Run("results list", func(t *testing.T) {
		var subjects []subject
		require.NoError(t, client.Get(ctx, "/subjects", &subjects))
		require.Len(t, subjects, 2)
		assert.Equal(t, "Databases", subjects[0].Name)
	})

	t.Run("data object", func(t *testing.T) {
		var s subject
		require.NoError(t, client.Get(ctx, "/subjects/s1", &s))
		assert.Equal(t, "s1", s.ID)
	})

	t.Run("bare body without envelope", func(t *testing.T) {
		var out struct {
			Status string `json:"status"`
		}
		require.NoError(t, client.Get(ctx, "/health", &out))
		assert.Equal(t, "ok", out.Status)
	})

	t.Run("not found", func(t *testing.T) {
		var s subject
		err := client.Get(ctx, "/subjects/missing", &s)
		assert.ErrorIs(t, err, apiclient.ErrNotFound)
	})
}

func TestClient_BearerAuth(t *testing.T) {
	t.Parallel()

	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, newStaticTokens("tok-123"))
	require.NoError(t, client.Get(context.Background(), "/anything", &struct{}{}))

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_RefreshRetryOn401(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"s1","name":"Databases"}}`))
	}))
	t.Cleanup(srv.Close)

	tokens := newStaticTokens("expired-token")
	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, tokens)

	var s subject
	require.NoError(t, client.Get(context.Background(), "/subjects/s1", &s))
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, int64(1), tokens.refreshed.Load(), "exactly one refresh")
	assert.Equal(t, int64(2), calls.Load(), "original request plus one retry")
}

func TestClient_UnauthorizedAfterRefresh(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, newStaticTokens("tok"))
	err := client.Get(context.Background(), "/subjects", &struct{}{})
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestClient_NoToken(t *testing.T) {
	t.Parallel()

	tokens := newStaticTokens("")
	tokens.fail = true
	client := apiclient.New(apiclient.Config{BaseURL: "http://localhost:0"}, tokens)

	err := client.Get(context.Background(), "/subjects", &struct{}{})
	assert.ErrorIs(t, err, apiclient.ErrNoToken)
}

func TestClient_WriteMethods(t *testing.T) {
	t.Parallel()

	var gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"id":"new","name":"Algorithms"}}`))
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, newStaticTokens("tok"))
	ctx := context.Background()

	var created subject
	require.NoError(t, client.Post(ctx, "/subjects", subject{Name: "Algorithms"}, &created))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Contains(t, gotBody, "Algorithms")
	assert.Equal(t, "new", created.ID)

	require.NoError(t, client.Put(ctx, "/subjects/new", subject{Name: "Algorithms II"}, nil))
	assert.Equal(t, http.MethodPut, gotMethod)

	require.NoError(t, client.Delete(ctx, "/subjects/new"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestRoleLookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/user-1":
			_, _ = w.Write([]byte(`{"data":{"id":"user-1","role":"Lecturer"}}`))
		case "/users/user-2":
			_, _ = w.Write([]byte(`{"data":{"id":"user-2","role":""}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{BaseURL: srv.URL}, newStaticTokens("tok"))
	lookup := apiclient.RoleLookup(client)
	ctx := context.Background()

	r, err := lookup(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, role.RoleLecturer, r)

	_, err = lookup(ctx, "user-2")
	assert.ErrorIs(t, err, role.ErrRoleNotFound)

	_, err = lookup(ctx, "user-3")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}
