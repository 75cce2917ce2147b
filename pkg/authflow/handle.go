package authflow

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/streamme-oauth2-client/pkg/metrics"
	"github.com/tendant/streamme-oauth2-client/pkg/session"
	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
)

// Handle serves the login, callback and logout routes.
type Handle struct {
	service         *Service
	tokenGenerator  session.TokenGenerator
	cookieSetter    session.CookieSetter
	sessionExpiry   time.Duration
	successRedirect string
	failureRedirect string
	metrics         metrics.Recorder
}

// NewHandle creates a new auth flow handler
func NewHandle(service *Service, tokenGenerator session.TokenGenerator, cookieSetter session.CookieSetter, recorder metrics.Recorder) *Handle {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Handle{
		service:         service,
		tokenGenerator:  tokenGenerator,
		cookieSetter:    cookieSetter,
		sessionExpiry:   time.Hour,
		successRedirect: "/",
		failureRedirect: "/",
		metrics:         recorder,
	}
}

// WithSessionExpiry sets the lifetime of issued session tokens.
func (h *Handle) WithSessionExpiry(expiry time.Duration) *Handle {
	h.sessionExpiry = expiry
	return h
}

// WithRedirects sets the destinations for login success and failure.
func (h *Handle) WithRedirects(success, failure string) *Handle {
	h.successRedirect = success
	h.failureRedirect = failure
	return h
}

// Login redirects the browser to the provider's authorization endpoint.
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.service.BeginLogin()
	if err != nil {
		slog.Error("Failed to initiate login", "err", err)
		h.fail(w, r, "initiate_failed")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback is the provider's redirect target. It completes the code-for-token
// exchange and establishes the session. Every failure mode collapses to the
// same redirect the user would see on a denial.
func (h *Handle) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		slog.Warn("Provider denied authorization", "error", errParam,
			"description", query.Get("error_description"))
		h.fail(w, r, "provider_denied")
		return
	}

	code := query.Get("code")
	if code == "" {
		slog.Warn("Callback missing authorization code")
		h.fail(w, r, "missing_code")
		return
	}

	user, err := h.service.CompleteLogin(r.Context(), query.Get("state"), code)
	if err != nil {
		slog.Error("Login failed", "err", err)
		switch {
		case errors.Is(err, ErrInvalidState):
			h.fail(w, r, "invalid_state")
		case errors.Is(err, userstore.ErrFailedToSaveUser):
			h.fail(w, r, "save_failed")
		default:
			h.fail(w, r, "exchange_failed")
		}
		return
	}

	token, expiresAt, err := h.tokenGenerator.GenerateToken(user.ID, h.sessionExpiry)
	if err != nil {
		slog.Error("Failed to issue session token", "userId", user.ID, "err", err)
		h.fail(w, r, "session_failed")
		return
	}

	h.cookieSetter.SetCookie(w, session.SessionTokenName, token, expiresAt)
	h.metrics.RecordLogin()
	http.Redirect(w, r, h.successRedirect, http.StatusFound)
}

// Logout removes the user's record from the store, destroys the session and
// redirects home. The cookie is cleared even if deletion fails; losing the
// server-side token beats leaving a user stuck logged in.
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	user := session.CurrentUser(r)
	if user != nil {
		if err := h.service.Logout(r.Context(), user.ID); err != nil {
			slog.Error("Failed to delete user record on logout", "userId", user.ID, "err", err)
		}
	}

	h.cookieSetter.ClearCookie(w, session.SessionTokenName)
	h.metrics.RecordLogout()
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handle) fail(w http.ResponseWriter, r *http.Request, reason string) {
	h.metrics.RecordLoginFailure(reason)
	http.Redirect(w, r, h.failureRedirect, http.StatusFound)
}
