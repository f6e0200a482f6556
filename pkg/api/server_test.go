package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authfold/rolodex/pkg/auth"
	"github.com/authfold/rolodex/pkg/authz"
	"github.com/authfold/rolodex/pkg/idp"
	"github.com/authfold/rolodex/pkg/session"
	"github.com/authfold/rolodex/pkg/store"
)

// allowAllGateway grants every requested (instance, action) pair.
type allowAllGateway struct{}

func (allowAllGateway) Check(
	_ context.Context,
	_ *auth.Principal,
	_ string,
	instances map[string]map[string]any,
	actions []string,
) (*authz.Decision, error) {
	verdicts := make(map[string]map[string]bool, len(instances))
	for id := range instances {
		actionsMap := make(map[string]bool, len(actions))
		for _, action := range actions {
			actionsMap[action] = true
		}
		verdicts[id] = actionsMap
	}
	return authz.NewDecision(verdicts), nil
}

// staticIdP satisfies idp.Client for routing tests.
type staticIdP struct{}

func (staticIdP) AuthorizationURL(state, codeChallenge string) (string, error) {
	return "http://idp.local/oauth2/authorize?state=" + state + "&code_challenge=" + codeChallenge, nil
}

func (staticIdP) ExchangeCode(context.Context, string, string) (*idp.Tokens, error) {
	return &idp.Tokens{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (staticIdP) FetchUser(context.Context, string) (*idp.User, error) {
	return &idp.User{
		ID: "u1",
		Registrations: []idp.Registration{
			{ApplicationID: "app-1", Roles: []string{"admin"}},
		},
	}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()

	sessions := session.NewManager(time.Hour)
	t.Cleanup(sessions.Stop)

	router := NewRouter(Deps{
		Sessions: sessions,
		Store:    store.NewInMemoryStore(store.SeedContacts()...),
		IdP:      staticIdP{},
		Gateway:  allowAllGateway{},
		ClientID: "app-1",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func TestRouteTable(t *testing.T) {
	t.Parallel()

	srv, sessions := newTestServer(t)

	sess := sessions.New()
	sess.SetPrincipal(&auth.Principal{ID: "u1", Roles: []string{"admin"}})
	cookie := &http.Cookie{Name: auth.SessionCookieName, Value: sess.ID()}

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	tests := []struct {
		method   string
		path     string
		withAuth bool
		want     int
	}{
		{http.MethodGet, "/", false, http.StatusOK},
		{http.MethodGet, "/logout", false, http.StatusFound},
		{http.MethodGet, "/auth/callback", false, http.StatusFound},
		{http.MethodGet, "/contacts", true, http.StatusOK},
		{http.MethodGet, "/contacts/c1", true, http.StatusOK},
		{http.MethodPost, "/contacts/new", true, http.StatusOK},
		{http.MethodPatch, "/contacts/c1", true, http.StatusOK},
		{http.MethodDelete, "/contacts/c1", true, http.StatusOK},
		{http.MethodGet, "/contacts", false, http.StatusUnauthorized},
		{http.MethodGet, "/contacts/c1", false, http.StatusUnauthorized},
		{http.MethodPost, "/contacts/new", false, http.StatusUnauthorized},
		{http.MethodPatch, "/contacts/c1", false, http.StatusUnauthorized},
		{http.MethodDelete, "/contacts/c1", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
		require.NoError(t, err)
		if tt.withAuth {
			req.AddCookie(cookie)
		}

		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, tt.want, resp.StatusCode, "%s %s (auth=%v)", tt.method, tt.path, tt.withAuth)
	}
}

func TestListThroughFullRouter(t *testing.T) {
	t.Parallel()

	srv, sessions := newTestServer(t)

	sess := sessions.New()
	sess.SetPrincipal(&auth.Principal{ID: "u1", Roles: []string{"admin"}})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/contacts", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.ID()})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var contacts []store.Contact
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&contacts))
	require.Len(t, contacts, 3)
	assert.Equal(t, "c1", contacts[0].ID)
}
