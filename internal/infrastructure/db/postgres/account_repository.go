package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const pgUniqueViolation = "23505"

// AccountRepository implements ports.AccountRepository backed by PostgreSQL (pgx).
// The pool is owned by the caller.
type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, last_login_at, is_active
		FROM accounts WHERE email = $1
	`, email)

	var (
		a         domain.Account
		lastLogin *time.Time
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &lastLogin, &a.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, fmt.Errorf("find account: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	if lastLogin != nil {
		t := lastLogin.UTC()
		a.LastLoginAt = &t
	}
	return a, true, nil
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created := account.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	// timestamptz keeps microseconds.
	created.CreatedAt = created.CreatedAt.Truncate(time.Microsecond)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, created_at, last_login_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, created.ID, created.Name, created.Email, created.PasswordHash, created.CreatedAt, created.LastLoginAt, created.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ConflictError{Op: "postgres.CreateAccount", Field: "email"}
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $2, email = $3, password_hash = $4, last_login_at = $5, is_active = $6
		WHERE id = $1
	`, account.ID, account.Name, account.Email, account.PasswordHash, account.LastLoginAt, account.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Op: "postgres.SaveAccount", Field: "email"}
		}
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Op: "postgres.SaveAccount", Resource: "account"}
	}
	return nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
