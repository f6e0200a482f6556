// Package auth provides the authenticated principal type and the
// authentication gate applied to every protected route.
package auth

import "fmt"

// Principal represents an authenticated user for the duration of a request.
// It is derived from the identity provider's profile response at login and
// is immutable afterwards.
type Principal struct {
	// ID is the unique identifier assigned by the identity provider.
	ID string `json:"id"`

	// FirstName is the user's first name.
	FirstName string `json:"firstName"`

	// LastName is the user's last name.
	LastName string `json:"lastName"`

	// Email is the user's email address.
	Email string `json:"email"`

	// Roles are the roles attached to the user's registration for this
	// application. They are the only inputs, besides ID, that reach the
	// policy decision point.
	Roles []string `json:"roles"`
}

// String returns a compact representation safe for logging.
func (p *Principal) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Principal{ID:%q}", p.ID)
}
