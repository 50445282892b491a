package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akipsinv/internal/auth"
	"akipsinv/internal/config"
	"akipsinv/internal/inventory"
)

// fakeProvider returns a fixed snapshot and records the options of the last
// resolution request.
type fakeProvider struct {
	snap     *inventory.Snapshot
	err      error
	lastOpts inventory.ResolveOptions
}

func (f *fakeProvider) Inventory(ctx context.Context, opts inventory.ResolveOptions) (*inventory.Snapshot, error) {
	f.lastOpts = opts
	return f.snap, f.err
}

func (f *fakeProvider) Fingerprint() string { return "fp" }

func testSnapshot() *inventory.Snapshot {
	return &inventory.Snapshot{
		ID:          "snap-1",
		GeneratedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Groups:      []string{"Core", "Campus"},
		Hosts: map[string]*inventory.ResolvedHost{
			"sw1": {
				Name:   "sw1",
				Groups: []string{"Core"},
				Vars:   map[string]any{"ansible_host": "10.0.0.1"},
			},
			"sw2": {
				Name:   "sw2",
				Groups: []string{"Campus"},
				Vars:   map[string]any{"ansible_host": "10.0.0.2"},
			},
		},
	}
}

func testServerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Security.AllowedOrigins = []string{"*"}
	return cfg
}

func do(t *testing.T, srv *Server, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestGetInventory_DynamicJSON(t *testing.T) {
	provider := &fakeProvider{snap: testSnapshot()}
	srv := New(testServerConfig(), provider)

	rec := do(t, srv, http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	meta := body["_meta"].(map[string]any)
	hostvars := meta["hostvars"].(map[string]any)
	assert.Contains(t, hostvars, "sw1")

	all := body["all"].(map[string]any)
	assert.Equal(t, []any{"ungrouped", "Core", "Campus"}, all["children"])

	assert.True(t, provider.lastOpts.UseCache, "reads go through the cache")
	assert.False(t, provider.lastOpts.ForceRefresh)
}

func TestGetInventory_YAML(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/inventory?format=yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/yaml")
	assert.Contains(t, rec.Body.String(), "ansible_host: 10.0.0.1")
}

func TestGetInventory_BadFormat(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/inventory?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInventory_ResolutionFailure(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{err: errors.New("akips unreachable")})

	rec := do(t, srv, http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// internal details are hidden outside debug mode
	assert.NotContains(t, rec.Body.String(), "akips unreachable")
}

func TestListHosts(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/hosts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])
}

func TestGetHost(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/hosts/sw1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sw1", decode(t, rec)["name"])

	rec = do(t, srv, http.MethodGet, "/api/v1/hosts/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGroups(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Core", "Campus"}, decode(t, rec)["groups"])
}

func TestGetGroupHosts(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/groups/Core/hosts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"sw1"}, decode(t, rec)["hosts"])

	rec = do(t, srv, http.MethodGet, "/api/v1/groups/Nope/hosts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh(t *testing.T) {
	provider := &fakeProvider{snap: testSnapshot()}
	srv := New(testServerConfig(), provider)

	rec := do(t, srv, http.MethodPost, "/api/v1/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "snap-1", body["id"])
	assert.Equal(t, float64(2), body["hosts"])
	assert.True(t, provider.lastOpts.ForceRefresh)
}

func TestAuth_Enforced(t *testing.T) {
	cfg := testServerConfig()
	cfg.Security.AuthEnabled = true
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.JWTExpiration = time.Hour
	srv := New(cfg, &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/api/v1/inventory", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

	jwtSvc := auth.NewJWTService(cfg)
	readToken, err := jwtSvc.GenerateToken("tester", auth.RoleRead, 0)
	require.NoError(t, err)
	writeToken, err := jwtSvc.GenerateToken("tester", auth.RoleWrite, 0)
	require.NoError(t, err)

	rec = do(t, srv, http.MethodGet, "/api/v1/inventory", map[string]string{
		"Authorization": "Bearer " + readToken,
	})
	assert.Equal(t, http.StatusOK, rec.Code, "read token can read")

	rec = do(t, srv, http.MethodPost, "/api/v1/refresh", map[string]string{
		"Authorization": "Bearer " + readToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, "read token cannot refresh")

	rec = do(t, srv, http.MethodPost, "/api/v1/refresh", map[string]string{
		"Authorization": "Bearer " + writeToken,
	})
	assert.Equal(t, http.StatusOK, rec.Code, "write token can refresh")

	rec = do(t, srv, http.MethodGet, "/api/v1/inventory", map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "garbage token rejected")
}

func TestSecurityHeaders(t *testing.T) {
	srv := New(testServerConfig(), &fakeProvider{snap: testSnapshot()})

	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
