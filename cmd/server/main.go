package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"intervue-backend/internal/config"
	"intervue-backend/internal/database"
	"intervue-backend/internal/handlers"
	"intervue-backend/internal/repository"
	"intervue-backend/internal/router"
	"intervue-backend/internal/services"
	"intervue-backend/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	// ──── Storage: Postgres when configured, SQLite file otherwise ────
	var store repository.Store
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("PostgreSQL connection failed", zap.Error(err))
		}
		if err := database.RunMigrations(pool, "migrations"); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		store = repository.NewPostgresStore(pool)
		logger.Info("PostgreSQL connected")
	} else {
		db, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("SQLite open failed",
				zap.Error(err),
				zap.String("path", cfg.SQLitePath))
		}
		store = repository.NewSQLiteStore(db)
		logger.Info("using SQLite fallback store", zap.String("path", cfg.SQLitePath))
	}
	defer store.Close()

	// ──── Optional Redis analytics cache ────
	var cache *redis.Client
	if cfg.RedisURL != "" {
		var err error
		cache, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Redis connection failed", zap.Error(err))
		}
		defer cache.Close()
		logger.Info("Redis analytics cache connected")
	}

	// ──── Persona + Gemini client ────
	persona := services.LoadPersona(cfg.PersonaFile, logger)

	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Fatal("Gemini client initialization failed", zap.Error(err))
	}
	defer geminiService.Close()
	if !geminiService.Configured() {
		logger.Warn("GEMINI_API_KEY not set, chat requests will fail until configured")
	}

	// ──── Sessions + handlers ────
	sessions := session.NewManager(cfg.SessionSecret, logger)
	chatHandler := handlers.NewChatHandler(store, geminiService, sessions, persona, logger)
	adminHandler := handlers.NewAdminHandler(store, cache, logger)

	r := router.New(chatHandler, adminHandler, cfg.WebDir, cfg.FrontendURL)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// The upstream call blocks with no timeout override, so the write
		// timeout stays generous.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("interview backend ready", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
