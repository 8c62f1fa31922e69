package ports

import (
	"context"
	"time"
)

// RegisterInput is the DTO passed from the transport layer to IdentityService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult carries the business outcome of a registration.
// Success is false for a duplicate email; validation problems are errors.
type RegisterResult struct {
	Success bool
	Message string
}

// LoginInput is the DTO passed from the transport layer to IdentityService.Login.
type LoginInput struct {
	Email      string
	Password   string
	RemoteAddr string
}

// LoginResult is the outcome of a login attempt. When Authenticated is
// false every other field is empty regardless of why the attempt failed.
type LoginResult struct {
	Authenticated bool
	ID            string
	Name          string
	Email         string
	Token         string
	ExpiresAt     time.Time
}

// IdentityService registers accounts and authenticates them.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (RegisterResult, error)
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
}
