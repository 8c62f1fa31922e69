package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// AccountRepository defines persistence for accounts keyed by email.
type AccountRepository interface {
	// FindByEmail performs an exact-match lookup. found is false, with a nil
	// error, when no account has that email.
	FindByEmail(ctx context.Context, email string) (account domain.Account, found bool, err error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create assigns ID and CreatedAt when unset. A duplicate email yields
	// *domain.ConflictError, also when the duplicate raced a prior existence check.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Save persists mutations of an existing account or returns *domain.NotFoundError.
	Save(ctx context.Context, account *domain.Account) error
	Ping(ctx context.Context) error
}
