// Package session resolves an authenticated identity from persisted
// credentials and gates role-protected views. It absorbs the divergent
// student and instructor profile schemas behind one normalized shape.
package session

// Role tags a session with the account schema it belongs to.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Valid reports whether the role is one of the two known schemas.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// FallbackName returns the display name used when no profile field yields one.
func (r Role) FallbackName() string {
	switch r {
	case RoleInstructor:
		return "Instructor"
	default:
		return "Student"
	}
}

// Profile is the canonical profile shape regardless of source schema.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Role        Role    `json:"role"`
}

// Identity is the resolved session state consumed by gates and views.
// Invariant: Authenticated == false implies Role == "" and Profile == nil.
type Identity struct {
	Authenticated bool
	Role          Role
	Profile       *Profile
	Loading       bool
}

// Anonymous is the identity of a signed-out session.
func Anonymous() Identity {
	return Identity{}
}

// Session is the persisted record: token pair, role tag and cached profile.
// SetSession writes it as one unit so readers never observe a half-updated
// record.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Role         Role     `json:"role"`
	Profile      *Profile `json:"profile,omitempty"`
}

// Empty reports whether the record carries no credentials.
func (s Session) Empty() bool {
	return s.AccessToken == ""
}
