package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/auth"
	"github.com/crucial707/inventory/internal/metrics"
	"github.com/crucial707/inventory/internal/middleware"
	"github.com/crucial707/inventory/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const stateCookie = "inventory_oauth_state"

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Sessions auth.SessionStore
	Policy   auth.Policy
	// Google is nil when OAuth credentials are not configured.
	Google *auth.GoogleProvider
	Logger *zap.Logger
	// LandingURL is where the browser goes after login.
	LandingURL string
	// Secure marks cookies Secure (HTTPS deployments).
	Secure bool
	// CrossSite is set when the frontend is served from another site. Cookies
	// then use SameSite=None and are always Secure.
	CrossSite bool
}

// Routes mounts /auth. limiter wraps the login and callback routes.
func (h *AuthHandler) Routes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Get("/google", h.GoogleLogin)
	r.With(limiter).Get("/google/callback", h.GoogleCallback)
	r.Get("/me", h.Me)
	r.Post("/logout", h.Logout)
}

// DevRoutes mounts the non-production login shortcut.
func (h *AuthHandler) DevRoutes(r chi.Router) {
	r.Get("/login", h.DevLogin)
	r.Get("/logout", h.Logout)
}

// sameSite is None when the frontend lives on another site, so the browser
// sends the session on its credentialed fetches. None requires Secure.
func (h *AuthHandler) sameSite() http.SameSite {
	if h.CrossSite {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure || h.CrossSite,
		SameSite: h.sameSite(),
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure || h.CrossSite,
		SameSite: h.sameSite(),
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, p models.Principal) (string, bool) {
	token, err := h.Sessions.Save(r.Context(), p)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return "", false
	}
	h.setCookie(w, auth.SessionCookie, token, h.Sessions.TTL())
	return token, true
}

func (h *AuthHandler) landing(query string) string {
	if query == "" {
		return h.LandingURL + "/"
	}
	return h.LandingURL + "/?" + query
}

// ==========================
// Google OAuth
// ==========================
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		JSONError(w, "google oauth is not configured", http.StatusServiceUnavailable)
		return
	}
	state, err := auth.NewState()
	if err != nil {
		writeError(w, r, h.Logger, apperr.Internal("oauth state", err))
		return
	}
	h.setCookie(w, stateCookie, state, 10*time.Minute)
	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		JSONError(w, "google oauth is not configured", http.StatusServiceUnavailable)
		return
	}
	c, err := r.Cookie(stateCookie)
	h.clearCookie(w, stateCookie)
	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		metrics.IncLogin("error")
		JSONError(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	if e := r.URL.Query().Get("error"); e != "" {
		metrics.IncLogin("denied")
		http.Redirect(w, r, h.landing("error="+url.QueryEscape(e)), http.StatusFound)
		return
	}

	identity, err := h.Google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		metrics.IncLogin("error")
		h.Logger.Warn("google login failed", zap.Error(err))
		http.Redirect(w, r, h.landing("error=login_failed"), http.StatusFound)
		return
	}
	principal, err := h.Policy.Resolve(identity)
	if err != nil {
		metrics.IncLogin("denied")
		h.Logger.Info("login denied", zap.String("email", identity.Email))
		http.Redirect(w, r, h.landing("error=access_denied"), http.StatusFound)
		return
	}
	if _, ok := h.startSession(w, r, principal); !ok {
		return
	}
	metrics.IncLogin("success")
	h.Logger.Info("login", zap.String("email", principal.Email), zap.String("role", principal.Role))
	http.Redirect(w, r, h.landing(""), http.StatusFound)
}

// ==========================
// Me / Logout
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "user": p})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.Sessions.Delete(r.Context(), token); err != nil {
			h.Logger.Warn("session delete failed", zap.Error(err))
		}
	}
	h.clearCookie(w, auth.SessionCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ==========================
// Dev login (non-production only)
// ==========================
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	p := h.Policy.DevPrincipal(r.URL.Query().Get("email"), r.URL.Query().Get("role"))
	token, ok := h.startSession(w, r, p)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "dev session created",
		"user":    p,
		"token":   token,
	})
}
