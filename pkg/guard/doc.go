// Package guard gates access to role-scoped page groups based on the
// current session state.
//
// A Policy names the login entry point, each role's default landing page
// and the protected path groups with their allowed roles; it can be
// declared in code or loaded from YAML. Guard turns the policy into
// chi-compatible middleware:
//
//	g := guard.New(sessions, policy)
//	r := chi.NewRouter()
//	r.Route("/admin", func(r chi.Router) {
//	    r.Use(g.Protect(role.RoleAdmin))
//	    ...
//	})
//
// While the session is still being established the guard serves a
// non-interactive waiting page and performs no navigation. Once settled,
// an unauthenticated request is redirected to the login path (the
// originally requested path is discarded) and an authenticated request
// whose role is outside the group's allowed set is redirected to that
// role's landing page. Protected content is never written while the
// decision is pending.
package guard
