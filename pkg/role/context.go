package role

import "context"

// roleCtxKey is the context key for the resolved role.
type roleCtxKey struct{}

// WithRole stores the resolved role in the context.
func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, roleCtxKey{}, r)
}

// FromContext retrieves the resolved role from the context.
func FromContext(ctx context.Context) (Role, bool) {
	r, ok := ctx.Value(roleCtxKey{}).(Role)
	return r, ok
}
