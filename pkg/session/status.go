package session

// Status identifies where a session is in its lifecycle.
type Status string

const (
	// StatusAnonymous is the empty state: no user, no tokens.
	StatusAnonymous Status = "anonymous"

	// StatusAuthenticating covers an in-flight sign-in, challenge
	// confirmation or restore verification.
	StatusAuthenticating Status = "authenticating"

	// StatusChallengeRequired means the provider demands one more step
	// (a forced password change) before the sign-in completes.
	StatusChallengeRequired Status = "challenge_required"

	// StatusAuthenticated means a user and a live token pair are held.
	StatusAuthenticated Status = "authenticated"

	// StatusRefreshing covers an in-flight token refresh; the previous
	// pair stays valid until the replacement commits.
	StatusRefreshing Status = "refreshing"

	// StatusError records a failed sign-in or confirmation. The state
	// resets to anonymous on the next explicit operation.
	StatusError Status = "error"
)

// Settled reports whether the status is a resting state: one where route
// decisions may be made without waiting.
func (s Status) Settled() bool {
	switch s {
	case StatusAuthenticating, StatusRefreshing:
		return false
	}
	return true
}

func (s Status) String() string {
	return string(s)
}

// transitions is the legal state graph. Any move not listed here is a
// programming error surfaced by the manager as ErrInvalidTransition.
var transitions = map[Status][]Status{
	StatusAnonymous:         {StatusAuthenticating},
	StatusAuthenticating:    {StatusAuthenticated, StatusChallengeRequired, StatusError, StatusAnonymous},
	StatusChallengeRequired: {StatusAuthenticating, StatusChallengeRequired, StatusError, StatusAnonymous},
	StatusAuthenticated:     {StatusRefreshing, StatusAnonymous},
	StatusRefreshing:        {StatusAuthenticated, StatusAnonymous},
	StatusError:             {StatusAuthenticating, StatusAnonymous},
}

func canTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
