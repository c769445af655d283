package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/database"
	"github.com/quizdrill/backend/internal/handler"
	"github.com/quizdrill/backend/internal/logger"
	"github.com/quizdrill/backend/internal/practice"
	"github.com/quizdrill/backend/internal/repository"
	"github.com/quizdrill/backend/internal/router"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/validator"
	"github.com/quizdrill/backend/internal/worker"
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
		Msg("Starting QuizDrill Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	topicRepo := repository.NewTopicRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	backupRepo := repository.NewBackupRepository(pool)
	statsRepo := repository.NewStatisticsRepository(pool)

	attemptStore := practice.NewStore(rdb, cfg.AttemptTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService, log)
	topicService := service.NewTopicService(topicRepo, log)
	questionService := service.NewQuestionService(pool, questionRepo, topicRepo, log)
	sessionService := service.NewSessionService(sessionRepo, questionRepo, log)
	practiceService := service.NewPracticeService(attemptStore, questionService, sessionService, log)
	mediaService := service.NewMediaService(cfg)
	backupService := service.NewBackupService(cfg, pool, backupRepo, log)
	statisticsService := service.NewStatisticsService(statsRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		Topic:      handler.NewTopicHandler(topicService),
		Question:   handler.NewQuestionHandler(questionService),
		Session:    handler.NewSessionHandler(sessionService),
		Practice:   handler.NewPracticeHandler(practiceService),
		User:       handler.NewUserHandler(userService),
		Media:      handler.NewMediaHandler(mediaService),
		Backup:     handler.NewBackupHandler(backupService),
		Statistics: handler.NewStatisticsHandler(statisticsService),
		WS:         handler.NewWSHandler(practiceService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	expiryWorker := worker.NewExpiryWorker(practiceService, log)
	backupWorker := worker.NewBackupWorker(cfg, backupService, log)

	go expiryWorker.Start(workerCtx)
	go backupWorker.Start(workerCtx)

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

	// 2. Stop background workers.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow in-flight sweeps to finish.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
