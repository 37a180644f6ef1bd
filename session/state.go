// Package session owns the authentication state of each browser context.
package session

// State is the position of a browser context in the session lifecycle
type State int

const (
	StateUnresolved    State = iota // Startup check not finished
	StateAnonymous                  // No valid credential
	StateAuthenticated              // Credential and resolved user
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}
