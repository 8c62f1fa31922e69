package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/infrastructure/security/token"
)

var testTokenConfig = token.Config{
	Secret:   "middleware-test-secret",
	Issuer:   "LoginAPI",
	Audience: "LoginAPIUsers",
	TTL:      time.Hour,
}

func issueToken(t *testing.T, cfg token.Config) string {
	t.Helper()
	issuer, err := token.NewIssuer(cfg)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	issued, err := issuer.Issue("acc-1", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return issued.Token
}

func newAuth(t *testing.T) echo.MiddlewareFunc {
	t.Helper()
	v, err := token.NewValidator(testTokenConfig)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return Auth(v)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, testTokenConfig))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := newAuth(t)(func(c echo.Context) error {
		called = true
		if c.Get(handler.CtxEmail) != "alice@example.com" {
			t.Fatalf("email not set")
		}
		if c.Get(handler.CtxAccountID) != "acc-1" {
			t.Fatalf("account id not set")
		}
		if c.Get(handler.CtxName) != "Alice" {
			t.Fatalf("name not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	foreign := testTokenConfig
	foreign.Secret = "someone-else"

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "bearer without token", header: "Bearer"},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "foreign signature", header: "Bearer " + issueToken(t, foreign)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := newAuth(t)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := h(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("expected empty body, got %q", rec.Body.String())
			}
		})
	}
}
