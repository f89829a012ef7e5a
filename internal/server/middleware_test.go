package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"printbridge/internal/config"
)

func corsRequest(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/health", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORSWildcardReflectsOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.AllowedOrigins = []string{"*"}
	h := newTestServer(cfg, discoveryStub()).Handler()

	rec := corsRequest(h, http.MethodGet, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSAllowedList(t *testing.T) {
	cfg := config.Default()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	h := newTestServer(cfg, discoveryStub()).Handler()

	rec := corsRequest(h, http.MethodGet, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = corsRequest(h, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSNoOriginHeader(t *testing.T) {
	h := newTestServer(config.Default(), discoveryStub()).Handler()

	rec := corsRequest(h, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	cfg := config.Default()
	cfg.APIToken = "s3cret"
	h := newTestServer(cfg, discoveryStub()).Handler()

	// Preflights carry no token; they must not hit the auth gate.
	req := httptest.NewRequest(http.MethodOptions, "/api/print", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}
