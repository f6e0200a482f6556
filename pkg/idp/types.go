package idp

import "time"

// tokenExpirationBuffer is the time buffer before actual expiration to
// consider a token expired. This accounts for clock skew and network latency.
const tokenExpirationBuffer = 30 * time.Second

// Tokens represents the tokens obtained from the identity provider.
type Tokens struct {
	// AccessToken is the access token from the identity provider.
	AccessToken string

	// RefreshToken is the refresh token (if provided).
	RefreshToken string

	// IDToken is the ID token (if the provider issued one).
	IDToken string

	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time
}

// IsExpired returns true if the access token has expired or will expire
// within the buffer period. Returns true for nil receivers.
func (t *Tokens) IsExpired() bool {
	if t == nil {
		return true
	}
	return time.Now().Add(tokenExpirationBuffer).After(t.ExpiresAt)
}

// Registration binds a user to one application and carries the roles
// granted to them within it.
type Registration struct {
	// ApplicationID is the application (OAuth client) the registration is for.
	ApplicationID string `json:"applicationId"`

	// Roles are the roles granted to the user in that application.
	Roles []string `json:"roles"`
}

// User is the identity provider's profile record for an authenticated user.
type User struct {
	// ID is the provider-assigned unique user id.
	ID string `json:"id"`

	// FirstName is the user's first name.
	FirstName string `json:"firstName"`

	// LastName is the user's last name.
	LastName string `json:"lastName"`

	// Email is the user's email address.
	Email string `json:"email"`

	// Registrations lists the applications the user is registered with.
	Registrations []Registration `json:"registrations"`
}

// RegistrationFor returns the user's registration for the given application
// id, or false if the user is not registered with it.
func (u *User) RegistrationFor(applicationID string) (*Registration, bool) {
	for i := range u.Registrations {
		if u.Registrations[i].ApplicationID == applicationID {
			return &u.Registrations[i], true
		}
	}
	return nil, false
}
