// Package config opens the inventory service for CLI commands from the
// same environment the API reads.
package config

import (
	"context"
	"fmt"

	appconfig "github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/logging"
	"github.com/crucial707/inventory/internal/repo"
	"github.com/crucial707/inventory/internal/service"
	"github.com/crucial707/inventory/internal/storage"
	"go.uber.org/zap"
)

const serviceName = "inventa"

// Session is an open connection to the configured store.
type Session struct {
	Cfg    appconfig.Config
	Stores repo.Stores
	Svc    *service.Inventory
	Logger *zap.Logger

	close func()
}

// NewSession wraps already opened stores. closeFn may be nil.
func NewSession(cfg appconfig.Config, stores repo.Stores, logger *zap.Logger, closeFn func()) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return &Session{
		Cfg:    cfg,
		Stores: stores,
		Svc:    service.New(stores, logger),
		Logger: logger,
		close:  closeFn,
	}
}

func (s *Session) Close() {
	s.close()
	s.Logger.Sync()
}

// Load reads the environment (and .env). Tests replace it.
var Load = appconfig.Load

// Open loads configuration and connects the store. Tests replace it.
var Open = func(ctx context.Context) (*Session, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, "console", serviceName)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	stores, closeFn, err := storage.Open(ctx, cfg, storage.Options{Migrate: cfg.DBAutoMigrate}, logger)
	if err != nil {
		return nil, err
	}
	return NewSession(cfg, stores, logger, closeFn), nil
}
