package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/infrastructure/security/token"
)

// Auth validates the bearer token and injects its claims into the context.
// Any failure answers 401 with an empty body.
func Auth(validator *token.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.NoContent(http.StatusUnauthorized)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.NoContent(http.StatusUnauthorized)
			}

			claims, err := validator.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}

			c.Set(handler.CtxAccountID, claims.Subject)
			c.Set(handler.CtxEmail, claims.Email)
			c.Set(handler.CtxName, claims.Name)

			return next(c)
		}
	}
}
