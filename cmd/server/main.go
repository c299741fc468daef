package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/config"
	"github.com/praxia/medprep-backend/internal/database"
	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/handler"
	"github.com/praxia/medprep-backend/internal/logger"
	"github.com/praxia/medprep-backend/internal/router"
	"github.com/praxia/medprep-backend/internal/service"
	"github.com/praxia/medprep-backend/internal/store"
	"github.com/praxia/medprep-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Dur("throttle", cfg.AnalyzeThrottle).
		Msg("Starting MedPrep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Stores ─────────────────────────────────────────────
	durableStore := store.NewPostgresStore(pool)
	cacheStore := store.NewRedisStore(rdb, cfg.ReportCacheTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg.APISecret, cfg.TokenExpiry, log)
	syncService := service.NewSyncService(durableStore, cacheStore, rdb, log)
	extractService := service.NewExtractService(cfg.ExtractorURL, cfg.ExtractorAPIKey, cfg.ExtractorTimeout, log)

	// ─── Start Analysis Engine ─────────────────────────────────────────
	eng := engine.New(engine.Options{
		Throttle:        cfg.AnalyzeThrottle,
		SyllabusWeights: cfg.SyllabusWeights,
		Seed:            cfg.KMeansSeed,
	}, log)

	engineCtx, engineCancel := context.WithCancel(context.Background())

	go eng.Start(engineCtx)
	go syncService.Run(engineCtx, eng.Messages())

	// Restore the last persisted snapshot so the engine survives restarts
	// without waiting for the client to re-init.
	if snap, err := syncService.LoadSnapshot(ctx); err == nil {
		eng.Init(*snap)
		log.Info().Msg("Engine restored from persisted snapshot")
	} else if !errors.Is(err, service.ErrNoSnapshot) {
		log.Warn().Err(err).Msg("Snapshot restore failed")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Engine:   handler.NewEngineHandler(eng, syncService, log),
		Question: handler.NewQuestionHandler(extractService, eng, syncService, log),
		WS:       handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the engine loop and let the sync service drain its channel.
	engineCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
