// Package memory provides in-process implementations of the persistence ports.
// They back the "memory" store driver and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// AccountRepository keeps accounts in a map keyed by email.
type AccountRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.Account
	byID    map[string]string
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byEmail: make(map[string]*domain.Account),
		byID:    make(map[string]string),
	}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byEmail[email]
	if !ok {
		return domain.Account{}, false, nil
	}
	return *a.Clone(), true, nil
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return nil, &domain.ConflictError{Op: "memory.CreateAccount", Field: "email"}
	}

	stored := account.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.byEmail[stored.Email] = stored
	r.byID[stored.ID] = stored.Email
	return stored.Clone(), nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email, ok := r.byID[account.ID]
	if !ok {
		return &domain.NotFoundError{Op: "memory.SaveAccount", Resource: "account"}
	}
	if email != account.Email {
		if _, taken := r.byEmail[account.Email]; taken {
			return &domain.ConflictError{Op: "memory.SaveAccount", Field: "email"}
		}
		delete(r.byEmail, email)
	}
	stored := account.Clone()
	r.byEmail[stored.Email] = stored
	r.byID[stored.ID] = stored.Email
	return nil
}

func (r *AccountRepository) Ping(ctx context.Context) error { return ctx.Err() }

// Len reports how many accounts are stored.
func (r *AccountRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
