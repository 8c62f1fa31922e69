package app

import (
	"context"
	"fmt"

	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/infrastructure/config"
	"github.com/99minutos/identity-service/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/identity-service/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/identity-service/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/identity-service/internal/infrastructure/db/redis"
)

// stores is the backend selected by STORE_DRIVER.
type stores struct {
	accounts ports.AccountRepository
	events   ports.LoginEventRepository
	close    func(ctx context.Context) error
}

func nopClose(context.Context) error { return nil }

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return stores{
			accounts: memory.NewAccountRepository(),
			events:   memory.NewLoginEventRepository(),
			close:    nopClose,
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return stores{}, err
		}
		accounts, events, err := mongostore.NewStores(ctx, db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, err
		}
		return stores{accounts: accounts, events: events, close: client.Disconnect}, nil

	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return stores{}, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		return stores{
			accounts: pgstore.NewAccountRepository(pool),
			events:   pgstore.NewLoginEventRepository(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return stores{}, err
		}
		return stores{
			accounts: redisstore.NewAccountRepository(client),
			events:   redisstore.NewLoginEventRepository(client),
			close:    func(context.Context) error { return client.Close() },
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
