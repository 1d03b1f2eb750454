package portalauth

import "fmt"

// SessionState is the lifecycle state of the session manager.
//
// The resolving state is load-bearing: boolean queries answer as
// unauthenticated while resolution is in flight, but callers that need a firm
// answer (guards) must be able to tell resolving apart from unauthenticated,
// or a valid session flashes through a login redirect on startup.
type SessionState string

const (
	SessionUninitialized   SessionState = "uninitialized"
	SessionResolving       SessionState = "resolving"
	SessionAuthenticated   SessionState = "authenticated"
	SessionUnauthenticated SessionState = "unauthenticated"
)

// Settled reports whether the state is a terminal resolution outcome.
func (s SessionState) Settled() bool {
	return s == SessionAuthenticated || s == SessionUnauthenticated
}

// Snapshot is a consistent read of the session manager's state. The token and
// profile are either both set or both empty.
type Snapshot struct {
	State   SessionState
	Token   string
	Profile *Profile
}

// IsAuthenticated reports a firm authenticated state.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == SessionAuthenticated && s.Profile != nil
}

func (s Snapshot) String() string {
	user := "<none>"
	if s.Profile != nil {
		user = s.Profile.ID.String()
	}
	return fmt.Sprintf("state=%s user=%s", s.State, user)
}
