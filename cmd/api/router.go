package main

import (
	"net/http"

	"github.com/crucial707/inventory/internal/auth"
	"github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/handlers"
	"github.com/crucial707/inventory/internal/middleware"
	"github.com/crucial707/inventory/internal/repo"
	"github.com/crucial707/inventory/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// deps is everything the router needs, built by main or by tests.
type deps struct {
	Cfg      config.Config
	Stores   repo.Stores
	Sessions auth.SessionStore
	// SessionPinger is set when the session backend is a server (Redis).
	SessionPinger repo.Pinger
	Google        *auth.GoogleProvider
	Logger        *zap.Logger
}

func newRouter(d deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := service.New(d.Stores, logger)

	assetH := &handlers.AssetHandler{Svc: svc, Logger: logger}
	collaboratorH := &handlers.CollaboratorHandler{Svc: svc, Logger: logger}
	authH := &handlers.AuthHandler{
		Sessions:   d.Sessions,
		Policy:     auth.Policy{AllowedEmails: d.Cfg.AllowedEmails, AdminEmail: d.Cfg.AdminEmail},
		Google:     d.Google,
		Logger:     logger,
		LandingURL: d.Cfg.LandingURL(),
		Secure:     d.Cfg.IsProd() || d.Cfg.TLSCertFile != "",
		CrossSite:  d.Cfg.IsProd(),
	}
	healthH := &handlers.HealthHandler{
		Store:           d.Stores.Pinger,
		Driver:          d.Stores.Driver,
		Sessions:        d.SessionPinger,
		OAuthConfigured: d.Google != nil,
		FrontendURLs:    d.Cfg.FrontendURLs,
		Logger:          logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.Cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders(d.Cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(d.Cfg.FrontendURLs))
	r.Use(middleware.Prometheus)
	r.Use(middleware.Session(d.Sessions, logger))
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/", healthH.Root)
	r.Get("/health", healthH.Health)
	r.Get("/ready", healthH.Ready)
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.AuthRateLimiter()
	r.Route("/auth", func(r chi.Router) { authH.Routes(r, limiter.Middleware) })
	if !d.Cfg.IsProd() {
		r.Route("/dev", authH.DevRoutes)
	}

	r.Route("/api/assets", assetH.Routes)
	r.Route("/api/collaborators", collaboratorH.Routes)
	return r
}
