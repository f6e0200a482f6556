package v1

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/authfold/rolodex/pkg/auth"
	"github.com/authfold/rolodex/pkg/idp"
	"github.com/authfold/rolodex/pkg/logger"
	"github.com/authfold/rolodex/pkg/session"
)

// WebRoutes holds the handlers for the login/landing flow. These routes are
// deliberately outside the authentication gate: they are how a principal
// comes to exist.
type WebRoutes struct {
	sessions *session.Manager
	idp      idp.Client
	clientID string
}

// NewWebRoutes creates the web route handlers.
func NewWebRoutes(sessions *session.Manager, idpClient idp.Client, clientID string) *WebRoutes {
	return &WebRoutes{
		sessions: sessions,
		idp:      idpClient,
		clientID: clientID,
	}
}

// landingResponse is the landing page body. A UI would render a login link
// from it; the demo serves the raw material as JSON.
type landingResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *auth.Principal `json:"user,omitempty"`
	LoginURL      string          `json:"loginUrl,omitempty"`
}

// Landing issues (or refreshes) the browser session, generates a fresh
// anti-forgery state value and PKCE pair, and returns the provider login URL.
func (h *WebRoutes) Landing(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)
	if sess == nil {
		sess = h.sessions.New()
	}

	state := uuid.NewString()
	verifier := idp.GeneratePKCEVerifier()
	challenge := idp.ComputePKCEChallenge(verifier)
	sess.BeginLogin(state, verifier)
	sess.SetCookie(w)

	loginURL, err := h.idp.AuthorizationURL(state, challenge)
	if err != nil {
		logger.Errorw("failed to build authorization URL", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, landingResponse{
		Authenticated: sess.Principal() != nil,
		User:          sess.Principal(),
		LoginURL:      loginURL,
	})
}

// Logout destroys the session and redirects home.
func (h *WebRoutes) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	session.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Callback completes the OAuth exchange: it verifies the anti-forgery state,
// exchanges the code with the PKCE verifier, fetches the user's profile, and
// records the principal with the roles from the registration for this
// application. State mismatches and unregistered users bounce home with no
// session mutation; provider failures get a generic 502.
func (h *WebRoutes) Callback(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(r)
	if sess == nil {
		logger.Warn("callback without a session, redirecting home")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	state, verifier := sess.LoginState()
	gotState := r.URL.Query().Get("state")
	if state == "" || gotState != state {
		// Logged only; no error detail reaches the browser.
		logger.Warnw("callback state mismatch", "session_id_prefix", sess.ID()[:8])
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	tokens, err := h.idp.ExchangeCode(r.Context(), r.URL.Query().Get("code"), verifier)
	if err != nil {
		logger.Errorw("code exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "login failed")
		return
	}

	user, err := h.idp.FetchUser(r.Context(), tokens.AccessToken)
	if err != nil {
		logger.Errorw("user fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "login failed")
		return
	}

	registration, ok := user.RegistrationFor(h.clientID)
	if !ok {
		logger.Warnw("user not registered for application", "user_id", user.ID)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	sess.SetPrincipal(&auth.Principal{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Roles:     registration.Roles,
	})

	logger.Infow("user logged in", "user_id", user.ID, "roles", registration.Roles)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *WebRoutes) sessionFor(r *http.Request) *session.Session {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		return nil
	}
	sess, ok := h.sessions.Get(cookie.Value)
	if !ok {
		return nil
	}
	return sess
}
