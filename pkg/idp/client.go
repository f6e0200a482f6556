// Package idp is the client for the external identity provider. It performs
// the authorization-code + PKCE exchange and fetches the authenticated
// user's profile and application registrations. The provider wire format
// follows FusionAuth: OAuth2 endpoints under /oauth2/ and the profile under
// /api/user.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	rolodexerrors "github.com/authfold/rolodex/pkg/errors"
	"github.com/authfold/rolodex/pkg/logger"
	"github.com/authfold/rolodex/pkg/networking"
)

// maxResponseSize is the maximum allowed response size for HTTP requests to prevent DoS.
const maxResponseSize = 1024 * 1024 // 1MB

// Client handles communication with the identity provider.
type Client interface {
	// AuthorizationURL builds the URL to redirect the user to the provider's
	// login page. state is the anti-forgery value, codeChallenge the PKCE
	// S256 challenge.
	AuthorizationURL(state, codeChallenge string) (string, error)

	// ExchangeCode exchanges an authorization code for tokens, presenting
	// the PKCE verifier matching the challenge sent on the redirect.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*Tokens, error)

	// FetchUser retrieves the profile and registrations of the user the
	// access token was issued for.
	FetchUser(ctx context.Context, accessToken string) (*User, error)
}

// Compile-time interface compliance check.
var _ Client = (*HTTPClient)(nil)

// Config configures an HTTPClient.
type Config struct {
	// BaseURL is the identity provider base URL.
	BaseURL string

	// ClientID is the OAuth client id.
	ClientID string

	// ClientSecret is the OAuth client secret.
	ClientSecret string

	// RedirectURL is the registered OAuth callback URL.
	RedirectURL string
}

// Validate checks the config for required fields.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("identity provider base URL is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client secret is required")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect URL is required")
	}
	return nil
}

// HTTPClient implements Client against a FusionAuth-compatible provider.
type HTTPClient struct {
	config     *Config
	httpClient networking.HTTPClient
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client networking.HTTPClient) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewClient creates a new identity provider client.
func NewClient(config *Config, opts ...Option) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid identity provider config: %w", err)
	}

	c := &HTTPClient{
		config:     config,
		httpClient: networking.NewHttpClientBuilder().Build(),
	}

	for _, opt := range opts {
		opt(c)
	}

	logger.Infow("identity provider client created",
		"base_url", config.BaseURL,
		"client_id", config.ClientID,
	)

	return c, nil
}

// AuthorizationURL builds the URL to redirect the user to the provider's
// login page.
func (c *HTTPClient) AuthorizationURL(state, codeChallenge string) (string, error) {
	if state == "" {
		return "", fmt.Errorf("state parameter is required")
	}
	if codeChallenge == "" {
		return "", fmt.Errorf("code challenge is required")
	}

	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {c.config.ClientID},
		"redirect_uri":          {c.config.RedirectURL},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {pkceChallengeMethodS256},
	}

	return c.config.BaseURL + "/oauth2/authorize?" + params.Encode(), nil
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *HTTPClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*Tokens, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	logger.Debugw("exchanging authorization code for tokens",
		"has_pkce_verifier", codeVerifier != "",
	)

	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.config.RedirectURL},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
	}

	if codeVerifier != "" {
		params.Set("code_verifier", codeVerifier)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.config.BaseURL+"/oauth2/token",
		strings.NewReader(params.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, rolodexerrors.NewUpstreamError("token request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, rolodexerrors.NewUpstreamError("failed to read token response", err)
	}

	return parseTokenResponse(body, resp.StatusCode)
}

// FetchUser retrieves the profile and registrations of the token's user.
func (c *HTTPClient) FetchUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, rolodexerrors.NewUpstreamError("user request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, rolodexerrors.NewUpstreamError("failed to read user response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, rolodexerrors.NewUpstreamError(
			fmt.Sprintf("user request returned status %d", resp.StatusCode), nil)
	}

	// The provider wraps the profile in a top-level "user" object.
	var payload struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, rolodexerrors.NewUpstreamError("failed to parse user response", err)
	}
	if payload.User == nil || payload.User.ID == "" {
		return nil, rolodexerrors.NewUpstreamError("user response missing user id", nil)
	}

	return payload.User, nil
}
