package authflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
)

// fakeProfileFetcher returns a fixed profile for any access token.
type fakeProfileFetcher struct {
	profile  userstore.Profile
	err      error
	gotToken string
}

func (f *fakeProfileFetcher) FetchProfile(ctx context.Context, accessToken string) (userstore.Profile, error) {
	f.gotToken = accessToken
	return f.profile, f.err
}

// newTokenEndpoint serves a canned OAuth2 token response.
func newTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"issued-at","token_type":"bearer","refresh_token":"issued-rt"}`))
	}))
}

func newTestService(t *testing.T, tokenURL string, fetcher ProfileFetcher, users userstore.UserRepository, opts ...Option) *Service {
	t.Helper()
	return NewService(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:3000/users/redirect",
		AuthURL:      "https://stream.me/api-auth/authorize",
		TokenURL:     tokenURL,
		Scopes:       []string{"account", "emoticon"},
	}, users, fetcher, opts...)
}

func TestService_BeginLogin_BuildsAuthorizationURL(t *testing.T) {
	users := userstore.NewInMemoryUserRepository()
	svc := newTestService(t, "https://stream.me/api-auth/token", &fakeProfileFetcher{}, users)

	authURL, err := svc.BeginLogin()
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/api-auth/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "account emoticon", query.Get("scope"))
	assert.Equal(t, "http://localhost:3000/users/redirect", query.Get("redirect_uri"))
	assert.NotEmpty(t, query.Get("state"))
}

func TestService_CompleteLogin_Success(t *testing.T) {
	tokenEndpoint := newTokenEndpoint(t)
	defer tokenEndpoint.Close()

	users := userstore.NewInMemoryUserRepository()
	fetcher := &fakeProfileFetcher{profile: userstore.Profile{ID: "user-1", Username: "alice", Slug: "alice"}}
	svc := newTestService(t, tokenEndpoint.URL, fetcher, users)

	authURL, err := svc.BeginLogin()
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")

	user, err := svc.CompleteLogin(context.Background(), state, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "issued-at", user.AccessToken)
	assert.Equal(t, "issued-rt", user.RefreshToken)
	assert.Equal(t, "issued-at", fetcher.gotToken)

	stored, err := users.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
}

func TestService_CompleteLogin_UnknownState(t *testing.T) {
	users := userstore.NewInMemoryUserRepository()
	svc := newTestService(t, "https://stream.me/api-auth/token", &fakeProfileFetcher{}, users)

	_, err := svc.CompleteLogin(context.Background(), "never-issued", "code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_CompleteLogin_StateConsumedOnce(t *testing.T) {
	tokenEndpoint := newTokenEndpoint(t)
	defer tokenEndpoint.Close()

	users := userstore.NewInMemoryUserRepository()
	fetcher := &fakeProfileFetcher{profile: userstore.Profile{ID: "user-1", Username: "alice"}}
	svc := newTestService(t, tokenEndpoint.URL, fetcher, users)

	authURL, err := svc.BeginLogin()
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	_, err = svc.CompleteLogin(context.Background(), state, "code")
	require.NoError(t, err)

	// A replayed callback must not establish a second login.
	_, err = svc.CompleteLogin(context.Background(), state, "code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_CompleteLogin_ExpiredState(t *testing.T) {
	users := userstore.NewInMemoryUserRepository()
	svc := newTestService(t, "https://stream.me/api-auth/token", &fakeProfileFetcher{}, users,
		WithStateTTL(-time.Second))

	authURL, err := svc.BeginLogin()
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	_, err = svc.CompleteLogin(context.Background(), state, "code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_CompleteLogin_SaveFailure(t *testing.T) {
	tokenEndpoint := newTokenEndpoint(t)
	defer tokenEndpoint.Close()

	users := userstore.NewInMemoryUserRepository()
	// Provider returns a profile with no stable ID.
	fetcher := &fakeProfileFetcher{profile: userstore.Profile{Username: "alice"}}
	svc := newTestService(t, tokenEndpoint.URL, fetcher, users)

	authURL, err := svc.BeginLogin()
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	_, err = svc.CompleteLogin(context.Background(), state, "code")
	assert.ErrorIs(t, err, userstore.ErrFailedToSaveUser)
}

func TestService_CompleteLogin_ExchangeFailure(t *testing.T) {
	tokenEndpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenEndpoint.Close()

	users := userstore.NewInMemoryUserRepository()
	svc := newTestService(t, tokenEndpoint.URL, &fakeProfileFetcher{}, users)

	authURL, err := svc.BeginLogin()
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	_, err = svc.CompleteLogin(context.Background(), state, "bad-code")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidState)
}
