package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/identity-service/internal/infrastructure/config"
	"github.com/99minutos/identity-service/internal/infrastructure/db/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		LogLevel:          "info",
		StoreDriver:       config.DriverMemory,
		PasswordHasher:    "sha256",
		CORSAllowOrigins:  []string{"http://localhost:4200"},
		LoginEventWorkers: 2,
		JWT: config.JWTConfig{
			Secret:     "app-test-secret",
			Issuer:     "LoginAPI",
			Audience:   "LoginAPIUsers",
			Expiration: time.Hour,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, zerolog.Nop(), WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	return a
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApp_MemoryDriverEndToEnd(t *testing.T) {
	a := newTestApp(t, testConfig())
	a.dispatcher.Start(context.Background())

	rec := post(t, a.Handler(), "/api/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = post(t, a.Handler(), "/api/auth/login", `{"email":"alice@example.com","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(t, a.Handler(), "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.NotEmpty(t, login["token"])

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+login["token"])
	verify := httptest.NewRecorder()
	a.Handler().ServeHTTP(verify, req)
	assert.Equal(t, http.StatusOK, verify.Code)

	require.NoError(t, a.Close(context.Background()))

	events := a.stores.events.(*memory.LoginEventRepository).Events()
	require.Len(t, events, 2)
	succeeded := 0
	for _, ev := range events {
		assert.Equal(t, "alice@example.com", ev.Email)
		assert.Equal(t, "203.0.113.7", ev.RemoteAddr)
		if ev.Succeeded {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestApp_ReadinessReportsDriver(t *testing.T) {
	a := newTestApp(t, testConfig())
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"memory"`)
}

func TestApp_SwaggerOnlyInDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvDevelopment
	dev := newTestApp(t, cfg)
	t.Cleanup(func() { _ = dev.Close(context.Background()) })

	rec := httptest.NewRecorder()
	dev.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/auth/login")

	prod := newTestApp(t, testConfig())
	t.Cleanup(func() { _ = prod.Close(context.Background()) })

	rec = httptest.NewRecorder()
	prod.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_RejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "unknown hasher", mutate: func(c *config.Config) { c.PasswordHasher = "md5" }},
		{name: "missing secret", mutate: func(c *config.Config) { c.JWT.Secret = "" }},
		{name: "zero expiration", mutate: func(c *config.Config) { c.JWT.Expiration = 0 }},
		{name: "unknown driver", mutate: func(c *config.Config) { c.StoreDriver = "cassandra" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := New(context.Background(), cfg, zerolog.Nop(), WithMetricsRegisterer(prometheus.NewRegistry()))
			assert.Error(t, err)
		})
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := newTestApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
