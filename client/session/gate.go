package session

// Decision is the outcome of an authorization check.
type Decision int

const (
	// AwaitLoading means resolution is still in flight. Callers render a
	// neutral state rather than redirecting an about-to-be-authenticated
	// user away.
	AwaitLoading Decision = iota
	// RedirectHome sends the caller to the safe default view.
	RedirectHome
	// Permit allows the protected action.
	Permit
)

func (d Decision) String() string {
	switch d {
	case AwaitLoading:
		return "await_loading"
	case RedirectHome:
		return "redirect_home"
	case Permit:
		return "permit"
	default:
		return "unknown"
	}
}

// Allow decides whether an identity may access a view. requiredRole == ""
// demands authentication only. Pure function, no side effects.
func Allow(identity Identity, requiredRole Role) Decision {
	if identity.Loading {
		return AwaitLoading
	}
	if !identity.Authenticated {
		return RedirectHome
	}
	if requiredRole != "" && identity.Role != requiredRole {
		return RedirectHome
	}
	return Permit
}
