package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/inventory/internal/auth"
	"github.com/crucial707/inventory/internal/models"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func gated(store auth.SessionStore, gate func(http.Handler) http.Handler, reached *bool) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
	return Session(store, zap.NewNop())(gate(inner))
}

func TestAccessGate(t *testing.T) {
	store := auth.NewJWTStore("secret", time.Hour)
	adminToken, err := store.Save(context.Background(), models.Principal{Email: "boss@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	viewerToken, err := store.Save(context.Background(), models.Principal{Email: "staff@example.com", Role: models.RoleViewer})
	require.NoError(t, err)

	tests := []struct {
		name       string
		gate       func(http.Handler) http.Handler
		token      string
		viaCookie  bool
		wantStatus int
		wantError  string
	}{
		{"read anonymous", RequireAuthenticated, "", false, http.StatusUnauthorized, MsgNotAuthenticated},
		{"read viewer", RequireAuthenticated, viewerToken, false, http.StatusOK, ""},
		{"read viewer cookie", RequireAuthenticated, viewerToken, true, http.StatusOK, ""},
		{"write anonymous", RequireAdmin, "", false, http.StatusUnauthorized, MsgNotAuthenticated},
		{"write garbage token", RequireAdmin, "garbage", false, http.StatusUnauthorized, MsgNotAuthenticated},
		{"write viewer", RequireAdmin, viewerToken, false, http.StatusForbidden, MsgAdminRoleRequired},
		{"write admin", RequireAdmin, adminToken, true, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			req := httptest.NewRequest(http.MethodPost, "/api/assets", nil)
			if tt.token != "" {
				if tt.viaCookie {
					req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tt.token})
				} else {
					req.Header.Set("Authorization", "Bearer "+tt.token)
				}
			}
			rec := httptest.NewRecorder()
			gated(store, tt.gate, &reached).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, reached)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, rec))
			}
		})
	}
}

func TestActorFrom(t *testing.T) {
	assert.Empty(t, ActorFrom(context.Background()))
	ctx := WithPrincipal(context.Background(), models.Principal{Email: "boss@example.com"})
	assert.Equal(t, "boss@example.com", ActorFrom(ctx))
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorBody(t, rec))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://inventory.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/assets", nil)
	req.Header.Set("Origin", "https://inventory.example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://inventory.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.0001), 2)
	h := l.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		req.RemoteAddr = "10.0.0.1:" + []string{"1000", "1001", "1002"}[i]
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestMaxBytes(t *testing.T) {
	var readErr error
	h := MaxBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		readErr = json.NewDecoder(r.Body).Decode(&map[string]any{})
	}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notes":"far too long for eight bytes"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestPrometheus_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Prometheus)
	r.Get("/api/assets/{id}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/LT001", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_RetryAfterAndEviction(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1.0/30.0), 1)
	l.now = func() time.Time { return now }
	h := l.Middleware(okHandler)

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.7:5000").Code)
	rec := call("203.0.113.7:5001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, call("198.51.100.1:5000").Code, "other clients keep their own bucket")

	now = now.Add(visitorIdle + time.Minute)
	assert.Equal(t, http.StatusOK, call("192.0.2.1:5000").Code)
	l.mu.Lock()
	_, kept := l.visitors["203.0.113.7"]
	l.mu.Unlock()
	assert.False(t, kept, "idle visitors are evicted")
}

func TestRateLimiter_ForwardingHeaders(t *testing.T) {
	call := func(h http.Handler, xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	direct := NewIPRateLimiter(rate.Limit(0.0001), 1).Middleware(okHandler)
	assert.Equal(t, http.StatusOK, call(direct, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call(direct, "203.0.113.2"),
		"a forged X-Forwarded-For does not open a fresh bucket")

	proxied := chimw.RealIP(NewIPRateLimiter(rate.Limit(0.0001), 1).Middleware(okHandler))
	assert.Equal(t, http.StatusOK, call(proxied, "203.0.113.1"))
	assert.Equal(t, http.StatusOK, call(proxied, "203.0.113.2"), "behind a trusted proxy each client has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, call(proxied, "203.0.113.1"))
}
