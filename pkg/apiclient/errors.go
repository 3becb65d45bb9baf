package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the request was rejected even after a
	// token refresh.
	ErrUnauthorized = errors.New("apiclient.unauthorized")

	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("apiclient.not_found")

	// ErrNoToken indicates the token source could not supply a bearer
	// token, typically because no session is live.
	ErrNoToken = errors.New("apiclient.no_token")
)

// StatusError reports a non-2xx response that maps to no sentinel.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: unexpected status %d: %s", e.StatusCode, e.Body)
}
