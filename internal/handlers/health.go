package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/crucial707/inventory/internal/repo"
	"go.uber.org/zap"
)

type HealthHandler struct {
	Store  repo.Pinger
	Driver string
	// Sessions is pinged too when the session backend has a server (Redis).
	Sessions        repo.Pinger
	OAuthConfigured bool
	FrontendURLs    []string
	Logger          *zap.Logger
}

func (h *HealthHandler) ping(ctx context.Context) (store, sessions string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	store = "connected"
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.Warn("store ping failed", zap.String("driver", h.Driver), zap.Error(err))
		store = "unreachable"
	}
	if h.Sessions != nil {
		sessions = "connected"
		if err := h.Sessions.Ping(ctx); err != nil {
			h.Logger.Warn("session store ping failed", zap.Error(err))
			sessions = "unreachable"
		}
	}
	return store, sessions
}

// Health reports dependency state. It always answers 200 so it can be
// read while a dependency is down; use Ready for readiness checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	store, sessions := h.ping(r.Context())
	oauth := "missing_credentials"
	if h.OAuthConfigured {
		oauth = "configured"
	}
	out := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"store":     map[string]string{"driver": h.Driver, "state": store},
		"oauth":     oauth,
	}
	if sessions != "" {
		out["sessions"] = sessions
	}
	writeJSON(w, http.StatusOK, out)
}

// Ready answers 503 until every dependency answers a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	store, sessions := h.ping(r.Context())
	if store != "connected" || (sessions != "" && sessions != "connected") {
		JSONError(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"app":      "inventory api",
		"status":   "ok",
		"frontend": h.FrontendURLs,
		"docs": map[string]string{
			"health":  "/health",
			"ready":   "/ready",
			"metrics": "/metrics",
			"authMe":  "/auth/me",
		},
	})
}
