package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "session context value " + k.name
}

var authUserKey = &contextKey{"AuthUser"}

// Verifier parses and validates the session token from the request cookie.
// Verification failures are recorded in the context rather than rejected
// here; AuthUserMiddleware decides what an invalid token means.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, TokenFromCookie)(next)
	}
}

// TokenFromCookie extracts the session token from the session cookie.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionTokenName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// AuthUserMiddleware resolves the verified session subject to a full user
// record. A missing or invalid token, or a subject with no matching store
// record (process restart, logout), leaves the request anonymous; it is
// never an error.
func AuthUserMiddleware(users userstore.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := claims["sub"].(string)
			if !ok || subject == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.Get(r.Context(), subject)
			if err != nil {
				if !errors.Is(err, userstore.ErrUserNotFound) {
					slog.Error("Failed to resolve session user", "userId", subject, "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the authenticated user for the request, or nil if the
// request is anonymous. Must be used after AuthUserMiddleware.
func CurrentUser(r *http.Request) *userstore.UserRecord {
	user, _ := r.Context().Value(authUserKey).(*userstore.UserRecord)
	return user
}

// RequireLogin gates routes that need an authenticated user. Anonymous
// requests are redirected home rather than rejected with an error status.
// Must be used after AuthUserMiddleware.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			slog.Debug("Unauthenticated request to protected route", "path", r.URL.Path)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
