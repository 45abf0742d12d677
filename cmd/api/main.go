package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tillpoint/internal/config"
	"tillpoint/internal/database"
	"tillpoint/internal/logger"
	"tillpoint/internal/repository"
	"tillpoint/internal/server"
	"tillpoint/internal/store"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "redis":
		addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
		return store.NewRedisStore(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
	case "postgres":
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db), nil
	case "memory":
		log.Warn("Using in-memory store: nothing will survive a restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func main() {
	// A missing .env file is fine; config also reads the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting point-of-sale API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	ctx := context.Background()
	kvstore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}

	// Login rate limiting rides on Redis; other drivers run without it.
	var rateLimitClient *redis.Client
	if rs, ok := kvstore.(*store.RedisStore); ok {
		rateLimitClient = rs.Client()
	}

	srv := server.NewServer(cfg, log, kvstore, rateLimitClient)

	// Seed the default admin so a fresh install is reachable, then resolve
	// the terminal session once from the persisted token pair.
	if cfg.Sales.AdminPassword != "" {
		if err := srv.UserSvc.EnsureDefaultAdmin(ctx, cfg.Sales.AdminUsername, cfg.Sales.AdminPassword); err != nil {
			log.Fatal("Failed to ensure default admin", zap.Error(err))
		}
	}
	if cfg.Sales.SeedDemoData {
		if err := repository.SeedDemoCatalog(ctx, repository.NewCatalogRepository(kvstore), log); err != nil {
			log.Fatal("Failed to seed demo catalog", zap.Error(err))
		}
	}
	if _, err := srv.SessionSvc.Resume(ctx); err != nil {
		log.Error("Failed to resume session", zap.Error(err))
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
