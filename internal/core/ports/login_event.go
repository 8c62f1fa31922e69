package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// LoginEventPublisher hands login attempts to the audit pipeline. Publish
// must not block the caller.
type LoginEventPublisher interface {
	Publish(event domain.LoginEvent)
}

// LoginEventRepository persists the audit trail of login attempts.
type LoginEventRepository interface {
	InsertLoginEvent(ctx context.Context, event domain.LoginEvent) error
}
