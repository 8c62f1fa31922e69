package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/core/service"
)

const (
	msgInvalidPayload = "Invalid request payload"
	msgTokenValid     = "Token is valid"
)

type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is the envelope for registration outcomes and every error.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type verifyResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: msgInvalidPayload})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return err
	}

	res, err := h.identity.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if domain.IsValidation(err) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
		return err
	}
	if !res.Success {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: res.Message})
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: res.Message})
}

// Login authenticates an account and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: msgInvalidPayload})
	}

	res, err := h.identity.Login(c.Request().Context(), ports.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RemoteAddr: c.RealIP(),
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return err
	}
	if !res.Authenticated {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: service.MsgInvalidCredentials})
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.TokensIssuedTotal.Inc()
	return c.JSON(http.StatusOK, loginResponse{
		ID:    res.ID,
		Name:  res.Name,
		Email: res.Email,
		Token: res.Token,
	})
}

// Verify reports whether the presented bearer token is valid.
//
// @Summary      Verify token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  verifyResponse
// @Failure      401
// @Router       /api/auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	email, ok := ctxEmail(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, verifyResponse{Email: email, Message: msgTokenValid})
}
