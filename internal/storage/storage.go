// Package storage opens the entity stores selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/db"
	"github.com/crucial707/inventory/internal/repo"
	"github.com/crucial707/inventory/internal/repo/memstore"
	"github.com/crucial707/inventory/internal/repo/mongostore"
	"go.uber.org/zap"
)

// Options tune Open for the calling binary.
type Options struct {
	// Migrate applies the embedded PostgreSQL migrations after connecting.
	Migrate bool
}

// Open connects the configured driver. The returned func releases it.
func Open(ctx context.Context, cfg config.Config, opts Options, logger *zap.Logger) (repo.Stores, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return memstore.NewStores(nil), func() {}, nil

	case config.StoreMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return repo.Stores{}, nil, fmt.Errorf("mongo: %w", err)
		}
		if err := db.EnsureMongoIndexes(ctx, database); err != nil {
			client.Disconnect(context.Background())
			return repo.Stores{}, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		logger.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
		return mongostore.NewStores(database), func() { client.Disconnect(context.Background()) }, nil

	case config.StorePostgres, "":
		sqlDB, err := db.Connect(ctx, cfg)
		if err != nil {
			return repo.Stores{}, nil, fmt.Errorf("postgres: %w", err)
		}
		if opts.Migrate {
			if err := db.Run(cfg.DatabaseURL()); err != nil {
				sqlDB.Close()
				return repo.Stores{}, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		logger.Info("connected to postgres", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))
		return repo.NewPostgresStores(sqlDB), func() { sqlDB.Close() }, nil

	default:
		return repo.Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
