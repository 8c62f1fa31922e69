package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const loginEventsCollection = "login_events"

// LoginEventRepository implements ports.LoginEventRepository using MongoDB.
type LoginEventRepository struct {
	coll *mongo.Collection
}

var _ ports.LoginEventRepository = (*LoginEventRepository)(nil)

func NewLoginEventRepository(db *mongo.Database) *LoginEventRepository {
	return &LoginEventRepository{coll: db.Collection(loginEventsCollection)}
}

// InsertLoginEvent appends an attempt to the login_events audit collection.
func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event domain.LoginEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"email":       event.Email,
		"succeeded":   event.Succeeded,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.AccountID != "" {
		doc["account_id"] = event.AccountID
	}
	if event.RemoteAddr != "" {
		doc["remote_addr"] = event.RemoteAddr
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

// EnsureIndexes indexes login events by email and time for history lookups.
func (r *LoginEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "account_id", Value: 1}}},
	})
	return err
}
