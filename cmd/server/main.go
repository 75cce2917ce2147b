// Command server runs the StreamMe OAuth2 client demo: a minimal web app
// that logs a browser user in with StreamMe via the authorization-code flow
// and proxies a few authenticated API calls.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/chi-demo/app"

	"github.com/tendant/streamme-oauth2-client/pkg/authflow"
	"github.com/tendant/streamme-oauth2-client/pkg/config"
	"github.com/tendant/streamme-oauth2-client/pkg/metrics"
	"github.com/tendant/streamme-oauth2-client/pkg/ratelimit"
	"github.com/tendant/streamme-oauth2-client/pkg/session"
	"github.com/tendant/streamme-oauth2-client/pkg/streamme"
	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
	"github.com/tendant/streamme-oauth2-client/pkg/views"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env file if it exists (before reading environment variables)
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	cfg := config.Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(-1)
	}
	if cfg.Provider.ClientID == "" || cfg.Provider.ClientSecret == "" {
		slog.Warn("STREAMME_CLIENT_ID / STREAMME_CLIENT_SECRET are not set; logins will fail")
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(-1)
	}

	users := userstore.NewInMemoryUserRepository()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	streamClient := streamme.NewClient(streamme.WithBaseURL(cfg.Provider.Domain))

	flowService := authflow.NewService(authflow.Config{
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		CallbackURL:  cfg.Provider.CallbackURL,
		AuthURL:      cfg.Provider.AuthURL(),
		TokenURL:     cfg.Provider.TokenURL(),
		Scopes:       cfg.Provider.ScopeList(),
	}, users, streamClient, authflow.WithStateTTL(cfg.Flow.StateTTL))

	tokenGenerator := session.NewJwtTokenGenerator(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.Audience)
	cookieSetter := session.NewCookieSetter(cfg.Session.CookieHttpOnly, cfg.Session.CookieSecure)

	authHandle := authflow.NewHandle(flowService, tokenGenerator, cookieSetter, collector).
		WithSessionExpiry(cfg.Session.MaxAge).
		WithRedirects(cfg.Flow.SuccessRedirect, cfg.Flow.FailureRedirect)

	proxyHandle := streamme.NewHandle(streamClient, renderer, collector)

	server := app.NewApp(app.WithPort(cfg.Server.Port))
	app.RegisterHealthzRoutes(server.R)

	jwtAuth := jwtauth.New("HS256", []byte(cfg.Session.Secret), nil)
	server.R.Use(session.Verifier(jwtAuth))
	server.R.Use(session.AuthUserMiddleware(users))

	server.R.Get("/", func(w http.ResponseWriter, r *http.Request) {
		var username string
		if user := session.CurrentUser(r); user != nil {
			username = user.Username
		}
		if err := renderer.Home(w, views.HomeData{
			Title:    "StreamMe OAuth2 Client Demo",
			Username: username,
		}); err != nil {
			slog.Error("Failed to render home view", "error", err)
		}
	})

	// Auth routes fan out to the provider, so throttle them per IP.
	server.R.Group(func(r chi.Router) {
		r.Use(ratelimit.PerIP(10, 10.0/60.0))
		r.Get("/login", authHandle.Login)
		r.Get("/users/redirect", authHandle.Callback)
	})

	server.R.Group(func(r chi.Router) {
		r.Use(session.RequireLogin)
		r.Get("/logout", authHandle.Logout)
		r.Get("/feed", proxyHandle.GetFeed)
		r.Get("/emoticons", proxyHandle.GetEmoticons)
		r.Get("/me", proxyHandle.UpdateMe)
	})

	server.R.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	slog.Info("Starting StreamMe OAuth2 client demo", "port", cfg.Server.Port,
		"domain", cfg.Provider.Domain, "callback", cfg.Provider.CallbackURL)
	server.Run()
}
