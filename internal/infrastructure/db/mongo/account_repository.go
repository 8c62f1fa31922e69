package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const accountsCollection = "accounts"

// AccountRepository implements ports.AccountRepository using MongoDB.
// Email uniqueness relies on the index created by EnsureIndexes.
type AccountRepository struct {
	coll *mongo.Collection
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

type mongoAccount struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	CreatedAt    time.Time  `bson:"created_at"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty"`
	IsActive     bool       `bson:"is_active"`
}

func toMongoAccount(a *domain.Account) mongoAccount {
	return mongoAccount{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt.UTC(),
		LastLoginAt:  a.LastLoginAt,
		IsActive:     a.IsActive,
	}
}

func (m mongoAccount) toDomain() domain.Account {
	a := domain.Account{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
		IsActive:     m.IsActive,
	}
	if m.LastLoginAt != nil {
		t := m.LastLoginAt.UTC()
		a.LastLoginAt = &t
	}
	return a
}

// EnsureIndexes creates the unique email index on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("accounts_email_unique"),
	})
	return err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), true, nil
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := account.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	// Mongo stores milliseconds; keep the returned value identical to what a read yields.
	created.CreatedAt = created.CreatedAt.Truncate(time.Millisecond)

	if _, err := r.coll.InsertOne(ctx, toMongoAccount(created)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Op: "mongo.CreateAccount", Field: "email"}
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoAccount(account)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": account.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{Op: "mongo.SaveAccount", Field: "email"}
		}
		return fmt.Errorf("save account: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Op: "mongo.SaveAccount", Resource: "account"}
	}
	return nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
