package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campuskit/campuskit/pkg/session"
)

func TestSession_IsAuthenticated(t *testing.T) {
	t.Parallel()

	user := &session.User{ID: "user-1"}
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name string
		sess session.Session
		want bool
	}{
		{
			name: "authenticated with user and token",
			sess: session.Session{User: user, AccessToken: "tok", ExpiresAt: future, Status: session.StatusAuthenticated},
			want: true,
		},
		{
			name: "no expiry means no local expiry check",
			sess: session.Session{User: user, AccessToken: "tok", Status: session.StatusAuthenticated},
			want: true,
		},
		{
			name: "expired token",
			sess: session.Session{User: user, AccessToken: "tok", ExpiresAt: past, Status: session.StatusAuthenticated},
			want: false,
		},
		{
			name: "missing user",
			sess: session.Session{AccessToken: "tok", Status: session.StatusAuthenticated},
			want: false,
		},
		{
			name: "missing token",
			sess: session.Session{User: user, Status: session.StatusAuthenticated},
			want: false,
		},
		{
			name: "pending challenge is never authenticated",
			sess: session.Session{User: user, AccessToken: "tok", Status: session.StatusChallengeRequired, PendingChallenge: true},
			want: false,
		},
		{
			name: "zero session",
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.sess.IsAuthenticated())
		})
	}
}

func TestStatus_Settled(t *testing.T) {
	t.Parallel()

	assert.True(t, session.StatusAnonymous.Settled())
	assert.True(t, session.StatusAuthenticated.Settled())
	assert.True(t, session.StatusChallengeRequired.Settled())
	assert.True(t, session.StatusError.Settled())
	assert.False(t, session.StatusAuthenticating.Settled())
	assert.False(t, session.StatusRefreshing.Settled())
}
