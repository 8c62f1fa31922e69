package memory

import (
	"context"
	"sync"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// LoginEventRepository appends login events to a slice.
type LoginEventRepository struct {
	mu     sync.Mutex
	events []domain.LoginEvent
}

func NewLoginEventRepository() *LoginEventRepository {
	return &LoginEventRepository{}
}

func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event domain.LoginEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *LoginEventRepository) Events() []domain.LoginEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LoginEvent, len(r.events))
	copy(out, r.events)
	return out
}
