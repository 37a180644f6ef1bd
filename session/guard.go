package session

// Decision is what the route guard does with a request
type Decision int

const (
	DecisionLoading Decision = iota // Render the placeholder and wait
	DecisionLogin                   // Redirect to the login page
	DecisionLanding                 // Redirect to the authenticated landing page
	DecisionAllow                   // Render the guarded page
)

func (d Decision) String() string {
	switch d {
	case DecisionLogin:
		return "login"
	case DecisionLanding:
		return "landing"
	case DecisionAllow:
		return "allow"
	default:
		return "loading"
	}
}

// Decide gates a page on the session state and the roles it accepts. An
// empty allowed set means authentication alone is enough. Only the two
// mismatch cases redirect, so a settled session never loops.
func Decide(state State, hasRole func(roleID string) bool, allowed []string) Decision {
	switch state {
	case StateUnresolved:
		return DecisionLoading
	case StateAnonymous:
		return DecisionLogin
	}

	if len(allowed) == 0 {
		return DecisionAllow
	}
	for _, role := range allowed {
		if role != "" && hasRole != nil && hasRole(role) {
			return DecisionAllow
		}
	}
	return DecisionLanding
}
