package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cast-deck.backend/internal/interfaces/http/handlers"
	"cast-deck.backend/internal/interfaces/http/middleware"
	"cast-deck.backend/pkg/jwt"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.NewJWTService("test-secret", time.Hour, time.Hour)

	r := gin.New()
	registerAPIV1Routes(r, routeDeps{
		walletHandler:    handlers.NewWalletHandler(nil, nil, jwtService),
		farcasterHandler: handlers.NewFarcasterHandler(nil, jwtService),
		linkHandler:      handlers.NewLinkHandler(nil),
		sessionHandler:   handlers.NewSessionHandler(jwtService),
		requireAuth:      middleware.RequireAuth(jwtService),
		optionalAuth:     middleware.OptionalAuth(jwtService),
	})
	return r
}

func TestRegisterAPIV1Routes(t *testing.T) {
	r := testRouter()

	want := map[string]string{
		"GET /api/v1/auth/wallet/challenge":         "",
		"POST /api/v1/auth/wallet":                  "",
		"POST /api/v1/auth/farcaster/channel":       "",
		"GET /api/v1/auth/farcaster/channel/status": "",
		"DELETE /api/v1/auth/farcaster/channel":     "",
		"POST /api/v1/auth/refresh":                 "",
		"GET /api/v1/links/me":                      "",
		"DELETE /api/v1/links/me/wallet":            "",
	}

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for key := range want {
		if !registered[key] {
			t.Errorf("route not registered: %s", key)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := testRouter()

	for _, target := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/links/me"},
		{http.MethodDelete, "/api/v1/links/me/wallet"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(target.method, target.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", target.method, target.path, rec.Code)
		}
	}
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	// with origin
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin: %s", got)
	}

	// options preflight
	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRegisterHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "cast-deck-backend" {
		t.Fatalf("unexpected health payload: %+v", body)
	}
}

func TestRegisterMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerMetricsRoute(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
