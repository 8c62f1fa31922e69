package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// Key format:
//
//	identity:account:<email>   → JSON account record (SETNX enforces uniqueness)
//	identity:account-id:<id>   → email, used by Save to locate the record
const (
	accountKeyPrefix   = "identity:account:"
	accountIDKeyPrefix = "identity:account-id:"
)

// AccountRepository implements ports.AccountRepository on Redis.
type AccountRepository struct {
	client *redis.Client
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(client *redis.Client) *AccountRepository {
	return &AccountRepository{client: client}
}

type redisAccount struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	IsActive     bool       `json:"is_active"`
}

func encodeAccount(a *domain.Account) ([]byte, error) {
	return json.Marshal(redisAccount{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt.UTC(),
		LastLoginAt:  a.LastLoginAt,
		IsActive:     a.IsActive,
	})
}

func decodeAccount(raw []byte) (domain.Account, error) {
	var ra redisAccount
	if err := json.Unmarshal(raw, &ra); err != nil {
		return domain.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return domain.Account{
		ID:           ra.ID,
		Name:         ra.Name,
		Email:        ra.Email,
		PasswordHash: ra.PasswordHash,
		CreatedAt:    ra.CreatedAt,
		LastLoginAt:  ra.LastLoginAt,
		IsActive:     ra.IsActive,
	}, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	raw, err := r.client.Get(ctx, accountKeyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, fmt.Errorf("get account: %w", err)
	}
	a, err := decodeAccount(raw)
	if err != nil {
		return domain.Account{}, false, err
	}
	return a, true, nil
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.client.Exists(ctx, accountKeyPrefix+email).Result()
	if err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created := account.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	payload, err := encodeAccount(created)
	if err != nil {
		return nil, err
	}

	// The id index goes first: once the email key is visible, Save must find it.
	idKey := accountIDKeyPrefix + created.ID
	if err := r.client.Set(ctx, idKey, created.Email, 0).Err(); err != nil {
		return nil, fmt.Errorf("index account id: %w", err)
	}

	ok, err := r.client.SetNX(ctx, accountKeyPrefix+created.Email, payload, 0).Result()
	if err != nil {
		_ = r.client.Del(ctx, idKey).Err()
		return nil, fmt.Errorf("create account: %w", err)
	}
	if !ok {
		_ = r.client.Del(ctx, idKey).Err()
		return nil, &domain.ConflictError{Op: "redis.CreateAccount", Field: "email"}
	}
	return created, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	const op = "redis.SaveAccount"

	current, err := r.client.Get(ctx, accountIDKeyPrefix+account.ID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &domain.NotFoundError{Op: op, Resource: "account"}
		}
		return fmt.Errorf("lookup account id: %w", err)
	}

	payload, err := encodeAccount(account)
	if err != nil {
		return err
	}

	if current == account.Email {
		ok, err := r.client.SetXX(ctx, accountKeyPrefix+account.Email, payload, 0).Result()
		if err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		if !ok {
			return &domain.NotFoundError{Op: op, Resource: "account"}
		}
		return nil
	}

	// Email changed: claim the new key first so uniqueness still holds.
	ok, err := r.client.SetNX(ctx, accountKeyPrefix+account.Email, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	if !ok {
		return &domain.ConflictError{Op: op, Field: "email"}
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, accountIDKeyPrefix+account.ID, account.Email, 0)
		p.Del(ctx, accountKeyPrefix+current)
		return nil
	})
	if err != nil {
		return fmt.Errorf("move account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
