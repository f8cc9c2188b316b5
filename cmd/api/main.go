package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crucial707/inventory/internal/auth"
	"github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/logging"
	"github.com/crucial707/inventory/internal/storage"
	"github.com/crucial707/inventory/internal/telemetry"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const serviceName = "inventory-api"

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Exporter:    cfg.TraceExporter,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdownTracing(context.Background())

	stores, closeStores, err := storage.Open(ctx, cfg, storage.Options{Migrate: cfg.DBAutoMigrate}, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	d := deps{Cfg: cfg, Stores: stores, Logger: logger}
	switch cfg.SessionBackend {
	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		rs := auth.NewRedisStore(client, cfg.SessionTTL())
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		d.Sessions, d.SessionPinger = rs, rs
	default:
		d.Sessions = auth.NewJWTStore(cfg.SessionSecret, cfg.SessionTTL())
	}

	if cfg.GoogleConfigured() {
		callback := cfg.GoogleCallbackURL
		if callback == "" {
			callback = strings.TrimRight(cfg.AppBaseURL, "/") + "/auth/google/callback"
		}
		d.Google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, callback, logger)
	} else {
		logger.Warn("google oauth credentials missing; /auth/google answers 503")
	}
	if len(cfg.AllowedEmails) == 0 {
		logger.Warn("ALLOWED_EMAILS is empty; nobody can log in with google")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("store", stores.Driver),
			zap.String("sessions", cfg.SessionBackend),
			zap.Strings("frontends", cfg.FrontendURLs),
			zap.String("admin", cfg.AdminEmail))
		if cfg.TLSCertFile != "" {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
