// Package role defines the closed set of privilege levels used across the
// LMS and a resolver that derives exactly one role from the possibly
// conflicting sources produced by a successful sign-in.
//
// A role can appear in up to three places: as a claim inside the signed ID
// token, as a mutable user attribute, and in an external profile record for
// accounts provisioned before the role attribute existed. The resolver
// applies a strict precedence (claim, then attribute, then external lookup)
// and falls back to the lowest-privilege role when every source is empty.
// Resolution never fails: a broken external lookup degrades to the default
// instead of failing the whole sign-in.
//
// # Usage
//
//	resolver := role.NewResolver(
//	    role.WithLookup(lookupFn),
//	)
//	r := resolver.Resolve(ctx, userID, tokenClaims, userAttributes)
//
// Context helpers are provided so HTTP middleware can stash the resolved
// role for downstream handlers:
//
//	ctx = role.WithRole(ctx, r)
//	r, ok := role.FromContext(ctx)
package role
