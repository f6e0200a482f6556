package store

// Contact is a single contact record. Records are owned by the store and
// treated as read-only by callers; the authorization gateway receives their
// full attribute set but never mutates them.
type Contact struct {
	// ID uniquely identifies the contact.
	ID string `json:"id"`

	// FirstName is the contact's first name.
	FirstName string `json:"firstName"`

	// LastName is the contact's last name.
	LastName string `json:"lastName"`

	// Email is the contact's email address.
	Email string `json:"email"`

	// Company is the organisation the contact belongs to.
	Company string `json:"company"`

	// OwnerID is the id of the principal that owns this contact. Policies
	// use it for owner-only rules.
	OwnerID string `json:"ownerId"`
}

// Attributes returns the contact as the attribute map submitted to the
// policy decision point.
func (c *Contact) Attributes() map[string]any {
	return map[string]any{
		"id":        c.ID,
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"email":     c.Email,
		"company":   c.Company,
		"ownerId":   c.OwnerID,
	}
}
