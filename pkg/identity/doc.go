// Package identity abstracts the identity provider behind a narrow
// interface so the session layer never depends on a specific vendor SDK.
//
// Sign-in outcomes that merely require another step (a forced password
// change, for example) are modeled as results, not errors, so callers
// handle every branch explicitly. Genuine failures are translated into a
// small closed set of sentinel errors at this boundary; no raw provider
// error ever crosses it.
//
// An OIDC-backed implementation is included for self-hosted providers that
// support the resource-owner password grant. Any other backend can be
// plugged in by implementing Provider; backends that can resume a session
// from a persisted refresh token additionally implement RefreshSeeder so
// the session layer can restore across process restarts.
package identity
