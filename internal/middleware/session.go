package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/auth"
	"github.com/crucial707/inventory/internal/models"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type key string

const principalKey key = "principal"

// Access gate response bodies.
const (
	MsgNotAuthenticated  = "not authenticated"
	MsgAdminRoleRequired = "admin role required"
)

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the request's principal, if any.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// ActorFrom returns the principal's e-mail for history records, or "" when anonymous.
func ActorFrom(ctx context.Context) string {
	if p, ok := PrincipalFrom(ctx); ok {
		return p.Email
	}
	return ""
}

// SessionToken extracts the session token from the session cookie or an
// "Authorization: Bearer" header. The header wins when both are present.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Session loads the principal for the request's session token, if valid,
// into the request context. It never rejects a request itself.
func Session(store auth.SessionStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			p, err := store.Load(r.Context(), token)
			if err != nil {
				if apperr.KindOf(err) != apperr.KindUnauthorized {
					logger.Error("session lookup failed",
						zap.String("request_id", chimw.GetReqID(r.Context())),
						zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAuthenticated rejects requests without a principal with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			writeJSONError(w, MsgNotAuthenticated, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without a principal with 401 and
// non-admin principals with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeJSONError(w, MsgNotAuthenticated, http.StatusUnauthorized)
			return
		}
		if !p.IsAdmin() {
			writeJSONError(w, MsgAdminRoleRequired, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
