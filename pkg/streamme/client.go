// Package streamme implements the authenticated client for the StreamMe
// REST API. Every call attaches the user's bearer token and normalizes the
// provider's response into a typed result.
package streamme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
)

const defaultBaseURL = "https://stream.me"

// Client calls the StreamMe API on behalf of an authenticated user.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// updateCount feeds the synthetic email/displayName sent by
	// UpdateProfile. It advances once per invocation, success or not.
	updateCount atomic.Int64
}

// Option is a function that configures a Client
type Option func(*Client)

// WithBaseURL sets the provider base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for provider API calls
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new StreamMe API client with functional options
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// FetchProfile retrieves the authenticated user's profile. Used during the
// OAuth2 callback to learn who the freshly issued token belongs to.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (userstore.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api-user/v1/me", nil)
	if err != nil {
		return userstore.Profile{}, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return userstore.Profile{}, fmt.Errorf("failed to make profile request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return userstore.Profile{}, fmt.Errorf("failed to read profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return userstore.Profile{}, fmt.Errorf("profile request failed with status %d: %s", resp.StatusCode, string(body))
	}

	profile, err := parseProfile(body)
	if err != nil {
		return userstore.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}

	slog.Info("Profile retrieved", "userId", profile.ID, "username", profile.Username)
	return profile, nil
}

// GetFeed retrieves the user's message feed.
func (c *Client) GetFeed(ctx context.Context, user userstore.UserRecord) (*Result, error) {
	url := fmt.Sprintf("%s/api-message/v1/users/%s/feed", c.baseURL, user.Slug)
	return c.do(ctx, http.MethodGet, url, user.AccessToken, nil)
}

// GetEmoticons retrieves the user's custom emoticons. The list may be empty
// if the user has never created any.
func (c *Client) GetEmoticons(ctx context.Context, user userstore.UserRecord) (*Result, error) {
	url := fmt.Sprintf("%s/api-emoticon/v1/%s/manage", c.baseURL, user.Slug)
	return c.do(ctx, http.MethodGet, url, user.AccessToken, nil)
}

// updateProfileBody is the payload sent by UpdateProfile.
type updateProfileBody struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// UpdateProfile edits account information in the user's profile. The email
// and display name are synthesized from the client's counter so repeated
// calls visibly change the account; the counter advances after the response
// arrives, whatever the outcome.
func (c *Client) UpdateProfile(ctx context.Context, user userstore.UserRecord) (*Result, error) {
	count := c.updateCount.Load()
	payload := updateProfileBody{
		Email:       fmt.Sprintf("newemail%d@gmail.com", count),
		DisplayName: fmt.Sprintf("newname%d", count),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile update: %w", err)
	}

	url := c.baseURL + "/api-user/v1/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+user.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	c.updateCount.Add(1)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return normalize(resp)
}

// UpdateCount reports how many profile updates have been attempted.
func (c *Client) UpdateCount() int64 {
	return c.updateCount.Load()
}

// do issues a single bearer-authenticated request and normalizes the
// response.
func (c *Client) do(ctx context.Context, method, url, accessToken string, body io.Reader) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return normalize(resp)
}

// normalize maps a provider response onto the Result/UpstreamError split.
func normalize(resp *http.Response) (*Result, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Code: resp.StatusCode, Body: body}
	}

	return &Result{Body: body}, nil
}

// parseProfile extracts the stable user identity from a StreamMe profile
// document. The ID may arrive as a string or a number.
func parseProfile(data []byte) (userstore.Profile, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return userstore.Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	profile := userstore.Profile{
		Username: getStringValue(raw, "username"),
		Slug:     getStringValue(raw, "slug"),
	}

	if id, ok := raw["id"]; ok && id != nil {
		profile.ID = fmt.Sprintf("%v", id)
	}
	if profile.ID == "" {
		return userstore.Profile{}, fmt.Errorf("no user ID found in profile")
	}

	return profile, nil
}

func getStringValue(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
