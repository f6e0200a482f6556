package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver maps tokens to principals.
type stubResolver map[string]*Principal

func (s stubResolver) Principal(token string) (*Principal, bool) {
	p, ok := s[token]
	return p, ok
}

func protectedHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok, "handler behind the gate must see a principal")
		_, _ = w.Write([]byte(p.ID))
	})
}

func TestRequireSessionAllowsAuthenticated(t *testing.T) {
	t.Parallel()

	resolver := stubResolver{"tok-1": {ID: "u1", Roles: []string{"viewer"}}}
	called := false
	handler := RequireSession(resolver)(protectedHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/contacts/c1", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireSessionRejectsMissingCookie(t *testing.T) {
	t.Parallel()

	called := false
	handler := RequireSession(stubResolver{})(protectedHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/contacts/c1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called, "rejects before the handler runs")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
}

func TestRequireSessionRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	called := false
	handler := RequireSession(stubResolver{})(protectedHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/contacts/c1", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()

	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)

	p := &Principal{ID: "u1"}
	ctx = WithPrincipal(ctx, p)
	got, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, p, got)

	// nil principal leaves the context unchanged.
	assert.Equal(t, ctx, WithPrincipal(ctx, nil))
}
