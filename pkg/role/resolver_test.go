package role_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuskit/campuskit/pkg/role"
)

func TestResolver_Precedence(t *testing.T) {
	t.Parallel()

	lookupAdmin := func(ctx context.Context, userID string) (role.Role, error) {
		return role.RoleAdmin, nil
	}

	tests := []struct {
		name       string
		claims     map[string]any
		attributes map[string]string
		lookup     role.LookupFunc
		want       role.Role
	}{
		{
			name:       "token claim wins over attribute",
			claims:     map[string]any{"role": "Admin"},
			attributes: map[string]string{"role": "Student"},
			want:       role.RoleAdmin,
		},
		{
			name:       "attribute used when claim absent",
			claims:     map[string]any{},
			attributes: map[string]string{"role": "Lecturer"},
			want:       role.RoleLecturer,
		},
		{
			name:       "legacy attribute casing honored",
			attributes: map[string]string{"Role": "lecturer"},
			want:       role.RoleLecturer,
		},
		{
			name:   "external lookup used when claim and attribute absent",
			lookup: lookupAdmin,
			want:   role.RoleAdmin,
		},
		{
			name: "default when every source is empty",
			want: role.RoleStudent,
		},
		{
			name:       "invalid claim falls through to attribute",
			claims:     map[string]any{"role": "superuser"},
			attributes: map[string]string{"role": "admin"},
			want:       role.RoleAdmin,
		},
		{
			name:   "non-string claim is ignored",
			claims: map[string]any{"role": 42},
			want:   role.RoleStudent,
		},
		{
			name:       "preferred casing checked before legacy",
			attributes: map[string]string{"role": "admin", "Role": "student"},
			want:       role.RoleAdmin,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolver := role.NewResolver(role.WithLookup(tt.lookup))
			got := resolver.Resolve(context.Background(), "user-1", tt.claims, tt.attributes)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_LookupFailureDegrades(t *testing.T) {
	t.Parallel()

	t.Run("lookup error yields default", func(t *testing.T) {
		t.Parallel()

		resolver := role.NewResolver(role.WithLookup(func(ctx context.Context, userID string) (role.Role, error) {
			return "", errors.New("profile service unreachable")
		}))

		got := resolver.Resolve(context.Background(), "user-1", nil, nil)
		assert.Equal(t, role.Default, got)
	})

	t.Run("not found yields default", func(t *testing.T) {
		t.Parallel()

		resolver := role.NewResolver(role.WithLookup(func(ctx context.Context, userID string) (role.Role, error) {
			return "", role.ErrRoleNotFound
		}))

		got := resolver.Resolve(context.Background(), "user-1", nil, nil)
		assert.Equal(t, role.Default, got)
	})

	t.Run("lookup attempted exactly once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		resolver := role.NewResolver(role.WithLookup(func(ctx context.Context, userID string) (role.Role, error) {
			calls++
			return "", errors.New("boom")
		}))

		resolver.Resolve(context.Background(), "user-1", nil, nil)
		assert.Equal(t, 1, calls)
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  role.Role
		ok    bool
	}{
		{"admin", role.RoleAdmin, true},
		{"Admin", role.RoleAdmin, true},
		{"LECTURER", role.RoleLecturer, true},
		{" student ", role.RoleStudent, true},
		{"", "", false},
		{"superuser", "", false},
	}

	for _, tt := range tests {
		tt := tt
		got, ok := role.Parse(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := role.FromContext(ctx)
	assert.False(t, ok)

	ctx = role.WithRole(ctx, role.RoleLecturer)
	got, ok := role.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, role.RoleLecturer, got)
}
