// Package store supplies contact records. It stands in for a real
// persistence layer: lookups by id and a full-collection scan, no query
// language, no pagination.
package store

import "sync"

// ContactStore is the read surface the handlers depend on.
type ContactStore interface {
	// FindByID returns the contact with the given id, or false if absent.
	FindByID(id string) (*Contact, bool)

	// FindAll returns every contact in insertion order.
	FindAll() []*Contact
}

// InMemoryStore is a ContactStore backed by a map plus an ordered id slice
// so that FindAll is deterministic.
type InMemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]*Contact
	order    []string
}

// NewInMemoryStore creates a store seeded with the given contacts.
func NewInMemoryStore(seed ...*Contact) *InMemoryStore {
	s := &InMemoryStore{
		contacts: make(map[string]*Contact, len(seed)),
	}
	for _, c := range seed {
		if _, exists := s.contacts[c.ID]; exists {
			continue
		}
		s.contacts[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return s
}

// FindByID returns the contact with the given id, or false if absent.
func (s *InMemoryStore) FindByID(id string) (*Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	return c, ok
}

// FindAll returns every contact in insertion order.
func (s *InMemoryStore) FindAll() []*Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Contact, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.contacts[id])
	}
	return all
}

// SeedContacts returns the demo dataset used when no other data source is
// wired up.
func SeedContacts() []*Contact {
	return []*Contact{
		{ID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Company: "Analytical Engines", OwnerID: "u1"},
		{ID: "c2", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Company: "Flowmatic", OwnerID: "u1"},
		{ID: "c3", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Company: "Bletchley", OwnerID: "u2"},
	}
}
