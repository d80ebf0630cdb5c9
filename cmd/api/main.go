// Package main is the entry point for the Kakeibo API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kakeibo/backend/config"
	"github.com/kakeibo/backend/internal/infra/db"
	"github.com/kakeibo/backend/internal/infra/dependency"
	"github.com/kakeibo/backend/internal/integration/persistence"
	"github.com/kakeibo/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting Kakeibo API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database_driver", cfg.Database.Driver,
	)

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		slog.Warn("Database connection failed, running without database",
			"error", err,
		)
		database = nil
	} else {
		if err := database.AutoMigrate(
			&model.UserModel{},
			&model.RefreshTokenModel{},
			&model.TransactionModel{},
		); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed successfully")

		pruned, err := persistence.NewTokenRepository(database.DB()).DeleteExpired(context.Background(), time.Now())
		if err != nil {
			slog.Warn("Failed to prune expired refresh tokens", "error", err)
		} else if pruned > 0 {
			slog.Info("Pruned expired refresh tokens", "count", pruned)
		}

		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = db.NewRedisClient(&cfg.Redis)
		if err != nil {
			slog.Warn("Redis connection failed, email sign-in disabled", "error", err)
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					slog.Error("Failed to close redis connection", "error", err)
				}
			}()
		}
	}

	injector := dependency.NewInjector(cfg, database, redisClient, dependency.Options{})
	engine := injector.Router.Setup(cfg.Server.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
