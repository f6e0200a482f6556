package auth

import (
	"encoding/json"
	"net/http"
)

// PrincipalResolver maps a session token (from the browser cookie) to the
// authenticated principal stored in that session. Implemented by
// session.Manager.
type PrincipalResolver interface {
	Principal(token string) (*Principal, bool)
}

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "rolodex_session"

// RequireSession returns middleware enforcing the authentication gate: a
// request without a session principal is rejected with 401 before any
// resource store or policy gateway access. Handlers behind it may assume
// PrincipalFromContext succeeds.
func RequireSession(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				writeUnauthenticated(w)
				return
			}

			principal, ok := resolver.Principal(cookie.Value)
			if !ok {
				writeUnauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck // nothing useful to do if the client went away
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
