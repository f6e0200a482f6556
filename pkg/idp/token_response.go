package idp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	rolodexerrors "github.com/authfold/rolodex/pkg/errors"
)

// tokenResponse is the provider's token endpoint success body (RFC 6749 § 5.1).
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// tokenErrorResponse is the provider's token endpoint error body (RFC 6749 § 5.2).
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// parseTokenResponse converts a token endpoint response body into Tokens.
func parseTokenResponse(body []byte, statusCode int) (*Tokens, error) {
	if statusCode != http.StatusOK {
		var oauthErr tokenErrorResponse
		if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
			return nil, rolodexerrors.NewUpstreamError(
				fmt.Sprintf("token request failed: %s: %s", oauthErr.Error, oauthErr.ErrorDescription), nil)
		}
		return nil, rolodexerrors.NewUpstreamError(
			fmt.Sprintf("token request returned status %d", statusCode), nil)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, rolodexerrors.NewUpstreamError("failed to parse token response", err)
	}
	if tr.AccessToken == "" {
		return nil, rolodexerrors.NewUpstreamError("token response missing access token", nil)
	}

	tokens := &Tokens{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		IDToken:      tr.IDToken,
	}
	if tr.ExpiresIn > 0 {
		tokens.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return tokens, nil
}
