package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keyroom-chat/keyroom/internal/api"
	"github.com/keyroom-chat/keyroom/internal/config"
	"github.com/keyroom-chat/keyroom/internal/handlers"
	"github.com/keyroom-chat/keyroom/internal/session"
	"github.com/keyroom-chat/keyroom/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	instance := uuid.NewString()[:8]

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("instance", instance).
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Str("instance", instance).
			Logger()
	}

	ctx := context.Background()

	// Initialize session store (postgres > redis > sqlite > files)
	var (
		st  store.SessionStore
		err error
	)
	switch {
	case cfg.DatabaseURL != "":
		st, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		logger.Info().Msg("using PostgreSQL session store")
	case cfg.RedisURL != "":
		st, err = store.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		logger.Info().Dur("session_ttl", cfg.SessionTTL).Msg("using Redis session store")
	case cfg.SQLitePath != "":
		st, err = store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite session store")
	default:
		st, err = store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("file store init failed")
		}
		logger.Info().Str("dir", cfg.DataDir).Msg("using file session store")
	}
	defer st.Close()

	// Wire service and router
	svc := session.NewService(st, logger)
	h := handlers.NewHandler(svc, st, instance)
	router := api.NewRouter(logger, h)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting keyroom server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
