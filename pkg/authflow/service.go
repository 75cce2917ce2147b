// Package authflow orchestrates the OAuth2 authorization-code dance against
// the StreamMe identity provider: initiate, callback, and logout.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
)

// ErrInvalidState is returned when the callback carries a state this
// process never issued, or one that has expired.
var ErrInvalidState = errors.New("invalid or expired state")

// ProfileFetcher retrieves the profile of the user a freshly issued access
// token belongs to.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (userstore.Profile, error)
}

// Config holds the OAuth2 client registration for the provider.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// Service runs the authorization-code flow.
type Service struct {
	oauth2Config *oauth2.Config
	users        userstore.UserRepository
	profiles     ProfileFetcher
	states       *stateStore
	stateTTL     time.Duration
}

// Option is a function that configures a Service
type Option func(*Service)

// WithStateTTL sets how long an issued state parameter stays valid.
func WithStateTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.stateTTL = ttl
	}
}

// NewService creates a new auth flow service with functional options
func NewService(cfg Config, users userstore.UserRepository, profiles ProfileFetcher, opts ...Option) *Service {
	service := &Service{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		users:    users,
		profiles: profiles,
		states:   newStateStore(),
		stateTTL: 10 * time.Minute,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// BeginLogin issues a state parameter and builds the provider authorization
// URL with the configured scopes. No local session state changes here.
func (s *Service) BeginLogin() (string, error) {
	state, err := s.states.Issue(s.stateTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	authURL := s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	slog.Info("Initiating OAuth2 flow", "state", state)
	return authURL, nil
}

// CompleteLogin validates the callback state, exchanges the authorization
// code for a token pair, fetches the user's profile and persists the record.
func (s *Service) CompleteLogin(ctx context.Context, state, code string) (userstore.UserRecord, error) {
	if !s.states.ValidateAndConsume(state) {
		return userstore.UserRecord{}, ErrInvalidState
	}

	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return userstore.UserRecord{}, fmt.Errorf("token exchange failed: %w", err)
	}

	profile, err := s.profiles.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return userstore.UserRecord{}, fmt.Errorf("profile fetch failed: %w", err)
	}

	user, err := s.users.Save(ctx, token.AccessToken, token.RefreshToken, profile)
	if err != nil {
		return userstore.UserRecord{}, err
	}

	slog.Info("Login complete", "userId", user.ID, "username", user.Username)
	return user, nil
}

// Logout removes the user's record from the store.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}
