package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	MsgFieldsRequired     = "All fields are required"
	MsgEmailRegistered    = "Email already registered"
	MsgRegistered         = "Registration successful. Please login."
	MsgInvalidCredentials = "Invalid email or password"
)

// IdentityService implements registration and login.
type IdentityService struct {
	repo   ports.AccountRepository
	hasher ports.CredentialHasher
	issuer ports.TokenIssuer
	events ports.LoginEventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

var _ ports.IdentityService = (*IdentityService)(nil)

// Option customises an IdentityService.
type Option func(*IdentityService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *IdentityService) { s.now = now }
}

// WithLoginEvents publishes every login attempt to p.
func WithLoginEvents(p ports.LoginEventPublisher) Option {
	return func(s *IdentityService) { s.events = p }
}

func NewIdentityService(
	repo ports.AccountRepository,
	hasher ports.CredentialHasher,
	issuer ports.TokenIssuer,
	log zerolog.Logger,
	opts ...Option,
) *IdentityService {
	s := &IdentityService{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. A duplicate email is a business outcome
// (Success false), not an error; no token is issued.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (ports.RegisterResult, error) {
	if isBlank(in.Name) || isBlank(in.Email) || isBlank(in.Password) {
		return ports.RegisterResult{}, &domain.ValidationError{Msg: MsgFieldsRequired}
	}
	if utf8.RuneCountInString(in.Email) > domain.MaxEmailLength {
		return ports.RegisterResult{}, &domain.ValidationError{Field: "email", Msg: fmt.Sprintf("must be at most %d characters", domain.MaxEmailLength)}
	}
	if utf8.RuneCountInString(in.Name) > domain.MaxNameLength {
		return ports.RegisterResult{}, &domain.ValidationError{Field: "name", Msg: fmt.Sprintf("must be at most %d characters", domain.MaxNameLength)}
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return ports.RegisterResult{}, fmt.Errorf("register: check email: %w", err)
	}
	if exists {
		return duplicateEmail(), nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return ports.RegisterResult{}, fmt.Errorf("register: %w", err)
	}

	account := &domain.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if domain.IsConflict(err) {
			return duplicateEmail(), nil
		}
		return ports.RegisterResult{}, fmt.Errorf("register: create account: %w", err)
	}

	s.log.Info().Str("account_id", created.ID).Msg("account registered")
	return ports.RegisterResult{Success: true, Message: MsgRegistered}, nil
}

// Login authenticates an email/password pair. Unknown email, wrong password
// and empty input all produce the same unauthenticated result.
func (s *IdentityService) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return s.fail(in, ""), nil
	}

	account, found, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: find account: %w", err)
	}
	if !found {
		return s.fail(in, ""), nil
	}

	if !s.hasher.Verify(in.Password, account.PasswordHash) {
		return s.fail(in, account.ID), nil
	}

	now := s.now().UTC()
	account.LastLoginAt = &now
	if err := s.repo.Save(ctx, &account); err != nil {
		if domain.IsNotFound(err) {
			return s.fail(in, ""), nil
		}
		return ports.LoginResult{}, fmt.Errorf("login: save account: %w", err)
	}

	issued, err := s.issuer.Issue(account.ID, account.Email, account.Name)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: issue token: %w", err)
	}

	s.publish(domain.LoginEvent{
		AccountID:  account.ID,
		Email:      account.Email,
		Succeeded:  true,
		RemoteAddr: in.RemoteAddr,
		OccurredAt: now,
	})

	return ports.LoginResult{
		Authenticated: true,
		ID:            account.ID,
		Name:          account.Name,
		Email:         account.Email,
		Token:         issued.Token,
		ExpiresAt:     issued.ExpiresAt,
	}, nil
}

func (s *IdentityService) fail(in ports.LoginInput, accountID string) ports.LoginResult {
	s.log.Debug().Str("account_id", accountID).Msg("login rejected")
	if in.Email != "" {
		s.publish(domain.LoginEvent{
			AccountID:  accountID,
			Email:      in.Email,
			RemoteAddr: in.RemoteAddr,
			OccurredAt: s.now().UTC(),
		})
	}
	return ports.LoginResult{}
}

func (s *IdentityService) publish(e domain.LoginEvent) {
	if s.events != nil {
		s.events.Publish(e)
	}
}

func duplicateEmail() ports.RegisterResult {
	return ports.RegisterResult{Success: false, Message: MsgEmailRegistered}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
