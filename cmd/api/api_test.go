package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/inventory/internal/auth"
	"github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/crucial707/inventory/internal/repo"
	"github.com/crucial707/inventory/internal/repo/memstore"
)

type testAPI struct {
	srv      *httptest.Server
	stores   repo.Stores
	sessions auth.SessionStore
}

func newTestAPI(t *testing.T, cfg config.Config) *testAPI {
	t.Helper()
	api := &testAPI{
		stores:   memstore.NewStores(nil),
		sessions: auth.NewJWTStore("test-secret-for-integration", time.Hour),
	}
	api.srv = httptest.NewServer(newRouter(deps{Cfg: cfg, Stores: api.stores, Sessions: api.sessions}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *testAPI) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := a.sessions.Save(context.Background(), models.Principal{Email: role + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, _ := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (a *testAPI) assetCount(t *testing.T) int {
	t.Helper()
	_, n, err := a.stores.Assets.List(context.Background(), query.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return n
}

// TestAPI_AccessGate checks that reads need a session, writes need the admin
// role, and rejected requests leave the store untouched.
func TestAPI_AccessGate(t *testing.T) {
	api := newTestAPI(t, config.Config{})
	viewer := api.token(t, models.RoleViewer)
	admin := api.token(t, models.RoleAdmin)
	body := `{"id":"LT001","equipmentType":"Laptop"}`

	resp, out := api.do(t, "GET", "/api/assets", "", "")
	if resp.StatusCode != http.StatusUnauthorized || out["error"] != "not authenticated" {
		t.Errorf("anonymous read: %d %v", resp.StatusCode, out)
	}

	resp, out = api.do(t, "POST", "/api/assets", "", body)
	if resp.StatusCode != http.StatusUnauthorized || out["error"] != "not authenticated" {
		t.Errorf("anonymous write: %d %v", resp.StatusCode, out)
	}

	resp, out = api.do(t, "POST", "/api/assets", viewer, body)
	if resp.StatusCode != http.StatusForbidden || out["error"] != "admin role required" {
		t.Errorf("viewer write: %d %v", resp.StatusCode, out)
	}
	for _, path := range []string{"/api/assets/LT001/deliver", "/api/collaborators"} {
		if resp, _ := api.do(t, "POST", path, viewer, `{}`); resp.StatusCode != http.StatusForbidden {
			t.Errorf("viewer POST %s: got %d, want 403", path, resp.StatusCode)
		}
	}
	if n := api.assetCount(t); n != 0 {
		t.Fatalf("store changed by rejected requests: %d assets", n)
	}
	if n := api.stores.History.(*memstore.History).Len(); n != 0 {
		t.Fatalf("history changed by rejected requests: %d entries", n)
	}

	if resp, _ := api.do(t, "POST", "/api/assets", admin, body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin write: got %d, want 201", resp.StatusCode)
	}
	resp, out = api.do(t, "GET", "/api/assets?search=lt0", viewer, "")
	if resp.StatusCode != http.StatusOK || out["total"] != float64(1) {
		t.Errorf("viewer read: %d %v", resp.StatusCode, out)
	}
	if resp, _ := api.do(t, "DELETE", "/api/assets/lt001", viewer, ""); resp.StatusCode != http.StatusForbidden {
		t.Errorf("viewer delete: got %d, want 403", resp.StatusCode)
	}
	if n := api.assetCount(t); n != 1 {
		t.Errorf("assets: got %d, want 1", n)
	}
}

func TestAPI_DevLoginCookieThenHistory(t *testing.T) {
	api := newTestAPI(t, config.Config{AllowedEmails: []string{"boss@example.com"}, AdminEmail: "boss@example.com"})

	resp, err := api.srv.Client().Get(api.srv.URL + "/dev/login")
	if err != nil {
		t.Fatalf("dev login: %v", err)
	}
	resp.Body.Close()
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("dev login set no session cookie")
	}

	send := func(method, path, body string) *http.Response {
		req, _ := http.NewRequest(method, api.srv.URL+path, strings.NewReader(body))
		req.AddCookie(session)
		resp, err := api.srv.Client().Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		return resp
	}
	send("POST", "/api/assets", `{"id":"mn001","equipmentType":"Monitor"}`).Body.Close()
	send("PUT", "/api/assets/MN001", `{"status":"InRepair"}`).Body.Close()
	send("PUT", "/api/assets/MN001", `{"notes":"dead pixel"}`).Body.Close()

	resp = send("GET", "/api/assets/mn001/history", "")
	defer resp.Body.Close()
	var entries []models.HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != models.HistoryEdit || entries[1].Kind != models.HistoryCreation || entries[0].Actor != "boss@example.com" {
		t.Errorf("unexpected history: %+v", entries)
	}
}

func TestAPI_DevRoutesDisabledInProd(t *testing.T) {
	api := newTestAPI(t, config.Config{Env: "prod"})
	if resp, _ := api.do(t, "GET", "/dev/login", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("dev login in prod: got %d, want 404", resp.StatusCode)
	}
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, config.Config{})

	resp, out := api.do(t, "GET", "/health", "", "")
	if resp.StatusCode != http.StatusOK || out["oauth"] != "missing_credentials" {
		t.Errorf("health: %d %v", resp.StatusCode, out)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	resp, err := api.srv.Client().Get(api.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics: got %d", resp.StatusCode)
	}

	if resp, _ := api.do(t, "GET", "/auth/google", "", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("google login without credentials: got %d, want 503", resp.StatusCode)
	}
}
