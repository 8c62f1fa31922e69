package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// LoginEventRepository implements ports.LoginEventRepository backed by PostgreSQL.
type LoginEventRepository struct {
	pool *pgxpool.Pool
}

var _ ports.LoginEventRepository = (*LoginEventRepository)(nil)

func NewLoginEventRepository(pool *pgxpool.Pool) *LoginEventRepository {
	return &LoginEventRepository{pool: pool}
}

func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event domain.LoginEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_events (account_id, email, succeeded, remote_addr, occurred_at)
		VALUES (NULLIF($1, ''), $2, $3, NULLIF($4, ''), $5)
	`, event.AccountID, event.Email, event.Succeeded, event.RemoteAddr, event.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}
