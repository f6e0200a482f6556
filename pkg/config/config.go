// Package config loads the runtime configuration for rolodex from the
// environment. All knobs live under the ROLODEX_ prefix; credentials are
// only ever environment-supplied, never compiled in.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ROLODEX"

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort       = 8080
	DefaultSessionTTL = 30 * time.Minute
)

// Config holds the full runtime configuration of the service.
type Config struct {
	// Port is the HTTP listening port.
	Port int

	// IdPURL is the base URL of the identity provider (e.g. a FusionAuth
	// instance). The token endpoint and user endpoint are derived from it.
	IdPURL string

	// PDPURL is the base URL of the policy decision point (e.g. a Cerbos
	// instance). The check endpoint is derived from it.
	PDPURL string

	// ClientID is the OAuth client id registered with the identity provider.
	// It doubles as the application id whose registration supplies roles.
	ClientID string

	// ClientSecret is the OAuth client secret. Required, environment-only.
	ClientSecret string

	// RedirectURL is the OAuth callback URL registered with the identity
	// provider. Defaults to http://localhost:<port>/auth/callback.
	RedirectURL string

	// SessionTTL is how long an idle browser session is kept before expiry.
	SessionTTL time.Duration

	// Debug enables debug logging.
	Debug bool
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("session_ttl", DefaultSessionTTL)

	cfg := &Config{
		Port:         v.GetInt("port"),
		IdPURL:       v.GetString("idp_url"),
		PDPURL:       v.GetString("pdp_url"),
		ClientID:     v.GetString("client_id"),
		ClientSecret: v.GetString("client_secret"),
		RedirectURL:  v.GetString("redirect_url"),
		SessionTTL:   v.GetDuration("session_ttl"),
		Debug:        v.GetBool("debug"),
	}

	if cfg.RedirectURL == "" {
		cfg.RedirectURL = fmt.Sprintf("http://localhost:%d/auth/callback", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required settings are present and sane.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d (set %s_PORT)", c.Port, envPrefix)
	}
	if c.IdPURL == "" {
		return fmt.Errorf("identity provider URL is required (set %s_IDP_URL)", envPrefix)
	}
	if c.PDPURL == "" {
		return fmt.Errorf("policy decision point URL is required (set %s_PDP_URL)", envPrefix)
	}
	if c.ClientID == "" {
		return fmt.Errorf("OAuth client id is required (set %s_CLIENT_ID)", envPrefix)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("OAuth client secret is required (set %s_CLIENT_SECRET)", envPrefix)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive (set %s_SESSION_TTL)", envPrefix)
	}
	return nil
}
