// Package config holds the startup configuration for the demo client,
// loaded from environment variables with cleanenv.
package config

import (
	"strings"
	"time"
)

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port int `env:"PORT" env-default:"3000"`
}

// ProviderConfig contains the StreamMe OAuth2 client registration.
type ProviderConfig struct {
	Domain       string `env:"STREAMME_DOMAIN" env-default:"https://stream.me"`
	ClientID     string `env:"STREAMME_CLIENT_ID"`
	ClientSecret string `env:"STREAMME_CLIENT_SECRET"`
	CallbackURL  string `env:"STREAMME_CALLBACK_URL" env-default:"http://localhost:3000/users/redirect"`
	// Scopes is a comma-separated list. If empty, the provider falls back
	// to the scopes registered for the client.
	Scopes string `env:"STREAMME_SCOPES" env-default:"account,emoticon"`
}

// AuthURL returns the provider's authorization endpoint.
func (c ProviderConfig) AuthURL() string {
	return c.Domain + "/api-auth/authorize"
}

// TokenURL returns the provider's token endpoint.
func (c ProviderConfig) TokenURL() string {
	return c.Domain + "/api-auth/token"
}

// ScopeList splits the configured scopes.
func (c ProviderConfig) ScopeList() []string {
	if c.Scopes == "" {
		return nil
	}
	var scopes []string
	for _, s := range strings.Split(c.Scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// SessionConfig contains session token and cookie settings.
type SessionConfig struct {
	Secret         string        `env:"SESSION_SECRET" env-default:"keyboard cat"`
	Issuer         string        `env:"SESSION_ISSUER" env-default:"streamme-oauth2-client"`
	Audience       string        `env:"SESSION_AUDIENCE" env-default:"streamme-oauth2-client"`
	MaxAge         time.Duration `env:"SESSION_MAX_AGE" env-default:"1m"`
	CookieHttpOnly bool          `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool          `env:"COOKIE_SECURE" env-default:"false"`
}

// FlowConfig contains the login flow redirect destinations and state TTL.
type FlowConfig struct {
	SuccessRedirect string        `env:"LOGIN_SUCCESS_REDIRECT" env-default:"/"`
	FailureRedirect string        `env:"LOGIN_FAILURE_REDIRECT" env-default:"/"`
	StateTTL        time.Duration `env:"OAUTH2_STATE_TTL" env-default:"10m"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Session  SessionConfig
	Flow     FlowConfig
}
