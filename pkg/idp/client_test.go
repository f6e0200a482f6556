package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rolodexerrors "github.com/authfold/rolodex/pkg/errors"
)

// mockProvider is a FusionAuth-shaped identity provider for testing.
type mockProvider struct {
	*httptest.Server
	tokenHandler func(w http.ResponseWriter, r *http.Request)
	userHandler  func(w http.ResponseWriter, r *http.Request)
}

func newMockProvider() *mockProvider {
	mock := &mockProvider{}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if mock.tokenHandler != nil {
			mock.tokenHandler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "test-access-token",
			"token_type":    "Bearer",
			"refresh_token": "test-refresh-token",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		if mock.userHandler != nil {
			mock.userHandler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":        "u1",
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"email":     "ada@example.com",
				"registrations": []map[string]any{
					{"applicationId": "app-1", "roles": []string{"admin", "viewer"}},
				},
			},
		})
	})

	mock.Server = httptest.NewServer(mux)
	return mock
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:      baseURL,
		ClientID:     "app-1",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
	}
}

func TestAuthorizationURL(t *testing.T) {
	t.Parallel()

	client, err := NewClient(testConfig("http://idp.local"))
	require.NoError(t, err)

	authURL, err := client.AuthorizationURL("state-1", "challenge-1")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth2/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "app-1", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "challenge-1", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))
}

func TestAuthorizationURLRequiresState(t *testing.T) {
	t.Parallel()

	client, err := NewClient(testConfig("http://idp.local"))
	require.NoError(t, err)

	_, err = client.AuthorizationURL("", "challenge")
	assert.Error(t, err)

	_, err = client.AuthorizationURL("state", "")
	assert.Error(t, err)
}

func TestExchangeCode(t *testing.T) {
	t.Parallel()

	mock := newMockProvider()
	t.Cleanup(mock.Close)

	var gotForm url.Values
	mock.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}

	client, err := NewClient(testConfig(mock.URL))
	require.NoError(t, err)

	tokens, err := client.ExchangeCode(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "at-123", tokens.AccessToken)
	assert.False(t, tokens.IsExpired())

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "code-1", gotForm.Get("code"))
	assert.Equal(t, "verifier-1", gotForm.Get("code_verifier"))
	assert.Equal(t, "app-1", gotForm.Get("client_id"))
	assert.Equal(t, "secret", gotForm.Get("client_secret"))
}

func TestExchangeCodeOAuthError(t *testing.T) {
	t.Parallel()

	mock := newMockProvider()
	t.Cleanup(mock.Close)

	mock.tokenHandler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "code expired",
		})
	}

	client, err := NewClient(testConfig(mock.URL))
	require.NoError(t, err)

	_, err = client.ExchangeCode(context.Background(), "stale-code", "verifier")
	require.Error(t, err)
	assert.True(t, rolodexerrors.IsType(err, rolodexerrors.ErrUpstream))
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestExchangeCodeProviderDown(t *testing.T) {
	t.Parallel()

	mock := newMockProvider()
	mock.Close()

	client, err := NewClient(testConfig(mock.URL))
	require.NoError(t, err)

	_, err = client.ExchangeCode(context.Background(), "code", "verifier")
	require.Error(t, err)
	assert.True(t, rolodexerrors.IsType(err, rolodexerrors.ErrUpstream))
}

func TestFetchUser(t *testing.T) {
	t.Parallel()

	mock := newMockProvider()
	t.Cleanup(mock.Close)

	var gotAuth string
	mock.userHandler = func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":        "u1",
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"email":     "ada@example.com",
				"registrations": []map[string]any{
					{"applicationId": "app-1", "roles": []string{"admin", "viewer"}},
				},
			},
		})
	}

	client, err := NewClient(testConfig(mock.URL))
	require.NoError(t, err)

	user, err := client.FetchUser(context.Background(), "at-123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer at-123", gotAuth)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	reg, ok := user.RegistrationFor("app-1")
	require.True(t, ok)
	assert.Equal(t, []string{"admin", "viewer"}, reg.Roles)

	_, ok = user.RegistrationFor("other-app")
	assert.False(t, ok)
}

func TestFetchUserUnauthorized(t *testing.T) {
	t.Parallel()

	mock := newMockProvider()
	t.Cleanup(mock.Close)

	mock.userHandler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	client, err := NewClient(testConfig(mock.URL))
	require.NoError(t, err)

	_, err = client.FetchUser(context.Background(), "bad-token")
	require.Error(t, err)
	assert.True(t, rolodexerrors.IsType(err, rolodexerrors.ErrUpstream))
}

func TestPKCEPair(t *testing.T) {
	t.Parallel()

	verifier := GeneratePKCEVerifier()
	assert.Len(t, verifier, 43)

	challenge := ComputePKCEChallenge(verifier)
	assert.NotEmpty(t, challenge)
	assert.NotEqual(t, verifier, challenge)

	// Same verifier yields the same challenge, different verifiers don't.
	assert.Equal(t, challenge, ComputePKCEChallenge(verifier))
	assert.NotEqual(t, challenge, ComputePKCEChallenge(GeneratePKCEVerifier()))
}
