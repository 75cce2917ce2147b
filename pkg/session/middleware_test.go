package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
)

const testSecret = "test-session-secret"

func setupTestRouter(t *testing.T, users userstore.UserRepository) (*chi.Mux, *int) {
	t.Helper()

	ja := jwtauth.New("HS256", []byte(testSecret), nil)

	protectedCalls := 0

	r := chi.NewRouter()
	r.Use(Verifier(ja))
	r.Use(AuthUserMiddleware(users))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireLogin)
		r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			protectedCalls++
			user := CurrentUser(r)
			require.NotNil(t, user)
			w.Write([]byte(user.Username))
		})
	})

	return r, &protectedCalls
}

func sessionCookie(t *testing.T, subject string) *http.Cookie {
	t.Helper()

	gen := NewJwtTokenGenerator(testSecret, "streamme-demo", "streamme-demo")
	token, _, err := gen.GenerateToken(subject, time.Minute)
	require.NoError(t, err)

	return &http.Cookie{Name: SessionTokenName, Value: token}
}

func TestRequireLogin_AnonymousRedirectsHome(t *testing.T) {
	users := userstore.NewInMemoryUserRepository()
	router, calls := setupTestRouter(t, users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, *calls)
}

func TestAuthUserMiddleware_ResolvesUser(t *testing.T) {
	users := userstore.NewInMemoryUserRepository()
	_, err := users.Save(context.Background(), "at", "rt",
		userstore.Profile{ID: "user-1", Username: "alice", Slug: "alice"})
	require.NoError(t, err)

	router, calls := setupTestRouter(t, users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
	assert.Equal(t, 1, *calls)
}

func TestAuthUserMiddleware_StaleSessionIsAnonymous(t *testing.T) {
	// A valid token whose store record is gone (restart, logout) must be
	// treated as anonymous, not as an error.
	users := userstore.NewInMemoryUserRepository()
	router, calls := setupTestRouter(t, users)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, "user-gone"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, *calls)
}

func TestAuthUserMiddleware_GarbageTokenIsAnonymous(t *testing.T) {
	users := userstore.NewInMemoryUserRepository()
	router, _ := setupTestRouter(t, users)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionTokenName, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBaseCookieSetter_SetAndClear(t *testing.T) {
	setter := NewCookieSetter(true, false)

	rec := httptest.NewRecorder()
	err := setter.SetCookie(rec, SessionTokenName, "token-value", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionTokenName, cookies[0].Name)
	assert.Equal(t, "token-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	err = setter.ClearCookie(rec, SessionTokenName)
	require.NoError(t, err)

	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
