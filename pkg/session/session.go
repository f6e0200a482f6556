package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/authfold/rolodex/pkg/auth"
)

// Session is one browser session. It holds the transient OAuth state value
// and PKCE verifier while a login is in flight, and the authenticated
// principal once the callback completes. Fields are guarded by a mutex so a
// browser issuing overlapping requests cannot corrupt the record.
type Session struct {
	id      string
	created time.Time

	mu        sync.RWMutex
	updated   time.Time
	state     string
	verifier  string
	principal *auth.Principal
}

// ID returns the session token.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.created
}

// UpdatedAt returns the time of the last access.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Touch updates the last-access timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.updated = time.Now()
	s.mu.Unlock()
}

// BeginLogin records the anti-forgery state value and PKCE verifier for an
// in-flight authorization redirect, replacing any previous pair.
func (s *Session) BeginLogin(state, verifier string) {
	s.mu.Lock()
	s.state = state
	s.verifier = verifier
	s.updated = time.Now()
	s.mu.Unlock()
}

// LoginState returns the stored state value and PKCE verifier.
func (s *Session) LoginState() (state, verifier string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.verifier
}

// SetPrincipal marks the session authenticated and clears the transient
// login values, which are single-use.
func (s *Session) SetPrincipal(p *auth.Principal) {
	s.mu.Lock()
	s.principal = p
	s.state = ""
	s.verifier = ""
	s.updated = time.Now()
	s.mu.Unlock()
}

// Principal returns the authenticated principal, or nil before login.
func (s *Session) Principal() *auth.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// SetCookie writes the session cookie for this session to the response.
func (s *Session) SetCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
