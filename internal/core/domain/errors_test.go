package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTypedErrors_UnwrapToSentinels(t *testing.T) {
	conflict := fmt.Errorf("create: %w", &ConflictError{Op: "accounts.Create", Field: "email"})
	if !IsConflict(conflict) {
		t.Fatalf("expected wrapped ConflictError to match ErrConflict")
	}
	var ce *ConflictError
	if !errors.As(conflict, &ce) || ce.Field != "email" {
		t.Fatalf("expected errors.As to recover field, got %+v", ce)
	}

	if !IsNotFound(&NotFoundError{Op: "accounts.Save", Resource: "account"}) {
		t.Fatalf("expected NotFoundError to match ErrNotFound")
	}
	if !IsValidation(&ValidationError{Field: "password", Msg: "required"}) {
		t.Fatalf("expected ValidationError to match ErrValidation")
	}
	if IsConflict(errors.New("boom")) {
		t.Fatalf("plain error must not match ErrConflict")
	}
}

func TestValidationError_Message(t *testing.T) {
	if got := (&ValidationError{Msg: "All fields are required"}).Error(); got != "All fields are required" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := (&ValidationError{Field: "email", Msg: "too long"}).Error(); got != "email: too long" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestAccount_CloneIsDeep(t *testing.T) {
	now := time.Now().UTC()
	a := &Account{ID: "1", Email: "ann@example.com", LastLoginAt: &now}
	c := a.Clone()

	later := now.Add(time.Hour)
	*c.LastLoginAt = later
	if !a.LastLoginAt.Equal(now) {
		t.Fatalf("clone shares LastLoginAt with original")
	}
	if (*Account)(nil).Clone() != nil {
		t.Fatalf("expected nil clone of nil account")
	}
}
