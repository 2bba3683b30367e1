package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/diewo77/prevengo/auth"
	"github.com/diewo77/prevengo/internal/assets"
	"github.com/diewo77/prevengo/internal/config"
	"github.com/diewo77/prevengo/internal/db"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/internal/pdf"
	"github.com/diewo77/prevengo/internal/policy"
	"github.com/diewo77/prevengo/internal/ratelimit"
	"github.com/diewo77/prevengo/internal/storage"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	dbConn, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations completed")
		return nil
	}
	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations completed")
	}

	store, err := storage.New(ctx, storage.Config{
		Backend:       cfg.Storage.Backend,
		Dir:           cfg.Storage.Dir,
		S3Bucket:      cfg.Storage.S3Bucket,
		S3Region:      cfg.Storage.S3Region,
		GCSBucket:     cfg.Storage.GCSBucket,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}

	logos := assets.NewLoader(
		assets.WithHTTPClient(&http.Client{Timeout: cfg.Assets.LogoFetchTimeout}),
		assets.WithMaxBytes(cfg.Assets.LogoMaxBytes),
		assets.WithBaseDir(cfg.Assets.BaseDir),
		assets.WithLogger(logger.Named("assets")),
	)
	composer := pdf.NewComposer(
		pdf.WithLogoSource(logos),
		pdf.WithStore(store),
		pdf.WithLogger(logger.Named("pdf")),
		pdf.WithLabels(pdf.LabelsFor(cfg.App.Lang)),
	)

	routerCfg := policy.NewRouterConfig(policy.Deps{
		DB:       dbConn,
		Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Limiter:  newLimiter(ctx, cfg.Redis, logger),
		Store:    store,
		Composer: composer,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(routerCfg, logger, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.App.Dev), zap.String("storage", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}

// newLimiter uses Redis when an address is configured and reachable, and
// falls back to the in-process limiter otherwise.
func newLimiter(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) ratelimit.Limiter {
	if cfg.Addr == "" {
		return ratelimit.NewMemoryLimiter(ratelimit.DefaultMaxAttempts, ratelimit.DefaultWindow)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory login limiter", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return ratelimit.NewMemoryLimiter(ratelimit.DefaultMaxAttempts, ratelimit.DefaultWindow)
	}
	return ratelimit.NewRedisLimiter(client, ratelimit.DefaultMaxAttempts, ratelimit.DefaultWindow)
}
