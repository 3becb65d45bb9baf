// Package apiclient is the JSON client the CRUD screens use to talk to
// the LMS backend. Requests carry a bearer token obtained from a
// TokenSource (the session manager in practice); a 401 triggers exactly
// one token refresh and retry before the failure is surfaced. Responses
// arrive in the backend's envelope, { "data": ... } or { "results": ... },
// and are unwrapped before decoding into the caller's type.
package apiclient
