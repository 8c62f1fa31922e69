package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/service"
	"github.com/99minutos/identity-service/internal/infrastructure/db/memory"
	"github.com/99minutos/identity-service/internal/infrastructure/security/password"
	"github.com/99minutos/identity-service/internal/infrastructure/security/token"
)

func newTestRouter(t *testing.T, swagger bool) *echo.Echo {
	t.Helper()
	cfg := token.Config{Secret: "router-test-secret", Issuer: "LoginAPI", Audience: "LoginAPIUsers", TTL: time.Hour}
	issuer, err := token.NewIssuer(cfg)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	validator, err := token.NewValidator(cfg)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	repo := memory.NewAccountRepository()
	svc := service.NewIdentityService(repo, password.SHA256Hasher{}, issuer, zerolog.Nop())

	return NewRouter(RouterDeps{
		Identity:       svc,
		TokenValidator: validator,
		Health:         map[string]handler.Pinger{"store": repo},
		CORSOrigins:    []string{"http://localhost:4200"},
		EnableSwagger:  swagger,
		Log:            zerolog.Nop(),
		Registerer:     prometheus.NewRegistry(),
	})
}

func do(e *echo.Echo, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RegisterLoginVerify(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(e, http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"other"}`, nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), service.MsgEmailRegistered) {
		t.Fatalf("duplicate register: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if login["token"] == "" || login["id"] == "" || login["name"] != "Alice" {
		t.Fatalf("unexpected login body: %+v", login)
	}

	rec = do(e, http.MethodGet, "/api/auth/verify", "", map[string]string{
		echo.HeaderAuthorization: "Bearer " + login["token"],
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("verify: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/auth/verify", "", nil)
	if rec.Code != http.StatusUnauthorized || rec.Body.Len() != 0 {
		t.Fatalf("verify without token: got %d: %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_RegisterValidation(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(e, http.MethodPost, "/api/auth/register", `{"name":"  ","email":"x@example.com","password":"pw"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body handler.MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Success || body.Message != service.MsgFieldsRequired {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	e := newTestRouter(t, false)

	if rec := do(e, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(e, http.MethodGet, "/api/auth/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
}

func TestRouter_SwaggerOnlyWhenEnabled(t *testing.T) {
	if rec := do(newTestRouter(t, false), http.MethodGet, "/swagger/index.html", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled: expected 404, got %d", rec.Code)
	}
	if rec := do(newTestRouter(t, true), http.MethodGet, "/swagger/index.html", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("swagger enabled: expected 200, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	e := newTestRouter(t, false)

	rec := do(e, http.MethodOptions, "/api/auth/login", "", map[string]string{
		echo.HeaderOrigin:                     "http://localhost:4200",
		echo.HeaderAccessControlRequestMethod: http.MethodPost,
	})
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:4200" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}
