// Package session owns the client-side authentication lifecycle for the
// LMS front-end: signing in, answering provider challenges, refreshing and
// replacing tokens, signing out, and restoring a previous session across
// process restarts.
//
// # Architecture
//
// A Manager drives an explicit state machine over a single in-memory
// Session value. It talks to the identity provider through the narrow
// identity.Provider interface and derives the user's role through a
// role.Resolver. A Store mirrors the committed session to durable storage
// as a best-effort fast path on restart; the identity provider remains the
// source of truth.
//
//	┌───────────┐  sign-in / refresh  ┌───────────────────┐
//	│  Manager  │ ──────────────────► │ identity.Provider │
//	└───────────┘                     └───────────────────┘
//	      │ snapshot after commit
//	      ▼
//	┌───────────┐
//	│   Store   │ (memory, file, redis)
//	└───────────┘
//
// The Manager is a process-wide singleton by convention: create one at app
// start, pass it explicitly to anything that needs session state, and let
// it go at shutdown. Only the Manager's own operations mutate the session;
// everything else reads through Current.
//
// # Guarantees
//
//   - At most one login attempt is in flight per Manager; a second Login
//     while one is running fails with ErrLoginInProgress.
//   - Concurrent RefreshSession calls collapse to one provider round trip
//     and all callers observe the identical resulting token pair.
//   - Logout clears local state and the durable mirror even when the
//     remote sign-out fails; the failure is logged, never surfaced.
//   - Restore never fails on a malformed or missing mirror record; it
//     seeds the provider with the mirrored refresh token, falls through to
//     a live verification bounded by Config.RestoreTimeout, and settles
//     Anonymous when that cannot complete.
//   - Token pairs are replaced wholesale, never merged; the mirror is
//     written only after the in-memory transition committed.
package session
