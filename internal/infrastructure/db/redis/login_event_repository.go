package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	loginEventsKeyPrefix = "identity:login-events:"
	// loginEventsPerEmail caps each per-email history list.
	loginEventsPerEmail = 100
)

// LoginEventRepository keeps a capped, newest-first list of attempts per email.
type LoginEventRepository struct {
	client *redis.Client
}

var _ ports.LoginEventRepository = (*LoginEventRepository)(nil)

func NewLoginEventRepository(client *redis.Client) *LoginEventRepository {
	return &LoginEventRepository{client: client}
}

func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event domain.LoginEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode login event: %w", err)
	}

	key := loginEventsKeyPrefix + event.Email
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, payload)
		p.LTrim(ctx, key, 0, loginEventsPerEmail-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

// Recent returns up to limit events for email, newest first. A limit of
// zero or less returns nothing.
func (r *LoginEventRepository) Recent(ctx context.Context, email string, limit int64) ([]domain.LoginEvent, error) {
	if limit <= 0 {
		return []domain.LoginEvent{}, nil
	}
	raws, err := r.client.LRange(ctx, loginEventsKeyPrefix+email, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list login events: %w", err)
	}
	out := make([]domain.LoginEvent, 0, len(raws))
	for _, raw := range raws {
		var e domain.LoginEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode login event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
