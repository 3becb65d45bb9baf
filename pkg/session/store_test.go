package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campuskit/pkg/role"
	"github.com/campuskit/campuskit/pkg/session"
)

func sampleSnapshot() session.Snapshot {
	return session.Snapshot{
		User: &session.User{
			ID:       "user-1",
			Username: "jdoe",
			Email:    "jdoe@example.edu",
			Role:     role.RoleLecturer,
		},
		AccessToken:   "access-token",
		IDToken:       "id-token",
		RefreshToken:  "refresh-token",
		ExpiresAt:     time.Now().Add(time.Hour).Truncate(time.Second),
		Authenticated: true,
		SavedAt:       time.Now().Truncate(time.Second),
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		snap := sampleSnapshot()
		require.NoError(t, store.Save(ctx, snap))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap.AccessToken, got.AccessToken)
		require.NotNil(t, got.User)
		assert.Equal(t, snap.User.ID, got.User.ID)
	})

	t.Run("load returns copies", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		require.NoError(t, store.Save(ctx, sampleSnapshot()))

		first, err := store.Load(ctx)
		require.NoError(t, err)
		first.User.ID = "mutated"

		second, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user-1", second.User.ID)
	})

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, session.ErrSnapshotNotFound)
		assert.NoError(t, store.Clear(ctx), "clearing an empty store is not an error")
	})

	t.Run("clear removes the record", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		require.NoError(t, store.Save(ctx, sampleSnapshot()))
		require.NoError(t, store.Clear(ctx))

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, session.ErrSnapshotNotFound)
	})
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "state", "session.json")
		store := session.NewFileStore(path)

		snap := sampleSnapshot()
		require.NoError(t, store.Save(ctx, snap))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap.AccessToken, got.AccessToken)
		assert.Equal(t, snap.IDToken, got.IDToken)
		assert.Equal(t, snap.RefreshToken, got.RefreshToken)
		assert.True(t, got.Authenticated)
		require.NotNil(t, got.User)
		assert.Equal(t, role.RoleLecturer, got.User.Role)
	})

	t.Run("snapshot file is owner-only", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.json")
		store := session.NewFileStore(path)
		require.NoError(t, store.Save(ctx, sampleSnapshot()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		store := session.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, session.ErrSnapshotNotFound)
		assert.NoError(t, store.Clear(ctx))
	})

	t.Run("corrupt file reports malformed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("not-json"), 0o600))

		store := session.NewFileStore(path)
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, session.ErrSnapshotMalformed)
	})

	t.Run("clear removes the file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.json")
		store := session.NewFileStore(path)
		require.NoError(t, store.Save(ctx, sampleSnapshot()))
		require.NoError(t, store.Clear(ctx))

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}
