package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edventure/edventure-backend/internal/config"
	"github.com/edventure/edventure-backend/internal/connectivity"
	"github.com/edventure/edventure-backend/internal/database"
	"github.com/edventure/edventure-backend/internal/engine"
	"github.com/edventure/edventure-backend/internal/handler"
	"github.com/edventure/edventure-backend/internal/logger"
	"github.com/edventure/edventure-backend/internal/repository"
	"github.com/edventure/edventure-backend/internal/router"
	"github.com/edventure/edventure-backend/internal/semantic"
	"github.com/edventure/edventure-backend/internal/service"
	"github.com/edventure/edventure-backend/internal/store"
	"github.com/edventure/edventure-backend/internal/validator"
	"github.com/edventure/edventure-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting Edventure Backend")

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
	studentRepo := repository.NewStudentRepository(pool)
	parentRepo := repository.NewParentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	recordRepo := repository.NewExamRecordRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, recordRepo)
	parentService := service.NewParentService(parentRepo, studentRepo, authService)
	questionService := service.NewQuestionService(questionRepo)

	// ─── Initialize Exam Engine ───────────────────────────────────────
	monitor := connectivity.NewMonitor(connectivity.PoolProber{Pool: pool}, cfg.ConnectivityInterval, log)
	go monitor.Start(ctx)

	var checker engine.SemanticChecker
	if cfg.OpenAIAPIKey != "" {
		checker = semantic.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, short answers fall back to fuzzy matching")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	evaluator := engine.NewEvaluator(checker, log)
	selector := engine.NewSelector(questionRepo, recordRepo, rng, log)
	offlineQueue := store.NewRedisQueue(rdb, config.WorkerKey.OfflineExamQueue)
	pipeline := engine.NewPipeline(evaluator, recordRepo, studentRepo, authService, offlineQueue, monitor, log)
	snapshots := engine.NewSnapshotStore(store.NewRedisKV(rdb, ""), log)
	manager := engine.NewManager(selector, pipeline, snapshots, studentService, rng, log)
	defer manager.Shutdown()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authService, studentService, parentService),
		Exam:   handler.NewExamHandler(manager, studentService, questionService),
		Parent: handler.NewParentHandler(parentService, studentService),
		WS:     handler.NewWSHandler(manager, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	syncWorker := worker.NewSyncWorker(pipeline, monitor, log)
	go syncWorker.Start(workerCtx)

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

	// 2. Stop background workers and wait for the final sync attempt.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
