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

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/catalog"
	"lectura-dashboard/internal/config"
	"lectura-dashboard/internal/database"
	"lectura-dashboard/internal/handlers"
	"lectura-dashboard/internal/kv"
	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/middleware"
	"lectura-dashboard/internal/repository"
	"lectura-dashboard/internal/router"
	"lectura-dashboard/internal/services"
	"lectura-dashboard/internal/websocket"
	"lectura-dashboard/internal/worker"
)

const (
	jobQueueSize = 64
	jobTimeout   = 3 * time.Minute
	eventChannel = "lectura:events"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("🚀 Starting Lectura Dashboard...")
	log.Info("✓ Environment variables loaded", "env", cfg.Env, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Connect Redis (store and/or event fan-out) ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("✗ Redis connection failed", "error", err)
		}
		defer redisClient.Close()
		log.Info("✓ Redis connected")
	}

	// ──── Step 3: Open the State Store ────
	var store kv.Store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("✗ PostgreSQL connection failed", "error", err)
		}
		defer pool.Close()
		log.Info("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, database.Migrations(), log); err != nil {
			log.Fatal("✗ Database migration failed", "error", err)
		}
		log.Info("✓ Database migrations applied")
		store = kv.NewPostgres(pool, cfg.StoreNamespace)
	case config.StoreRedis:
		store = kv.NewRedis(redisClient, cfg.StoreNamespace)
	default:
		log.Warn("using in-memory state store; learner state is lost on restart")
		store = kv.NewMemory()
	}
	repo := repository.NewStateRepo(store, log)

	// ──── Step 4: Load Seed Catalog ────
	seed, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("✗ Catalog load failed", "error", err)
	}
	log.Info("✓ Seed catalog loaded", "lectures", len(seed))

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(services.GeminiConfig{
		APIKey:             cfg.GeminiAPIKey,
		Model:              cfg.GeminiModel,
		ChatModel:          cfg.GeminiChatModel,
		VideoModel:         cfg.GeminiVideoModel,
		ConcurrentRequests: cfg.GeminiConcurrentReqs,
	}, log)
	if err != nil {
		log.Fatal("✗ Gemini client initialization failed", "error", err)
	}
	defer geminiService.Close()
	log.Info("✓ Gemini client initialized", "model", cfg.GeminiModel)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClient, eventChannel, log)
	go wsHub.Run(ctx)
	log.Info("✓ WebSocket hub started")

	// ──── Step 7: Build Controller & Worker Pool ────
	media, err := app.NewMediaStore(cfg.StoragePath, "/media")
	if err != nil {
		log.Fatal("✗ Media storage unavailable", "error", err)
	}

	workerPool := worker.NewPool(cfg.WorkerCount, jobQueueSize, jobTimeout, log)

	ctrl, err := app.New(ctx, app.Deps{
		Repo:      repo,
		Assistant: geminiService,
		Jobs:      workerPool,
		Events:    wsHub,
		Player:    wsHub,
		Videos:    services.NewYouTubeService(log),
		Extractor: services.NewFileExtractService(),
		Media:     media,
		Seed:      seed,
		Log:       log,
	})
	if err != nil {
		log.Fatal("✗ Learner state could not be loaded", "error", err)
	}
	ctrl.Register(workerPool)
	workerPool.Start()
	log.Info("✓ Worker pool started", "workers", cfg.WorkerCount)

	// ──── Step 8: Start HTTP Server ────
	aiLimiter := middleware.NewRateLimiter(ctx, cfg.AIRateLimitPerMin, time.Minute)

	r := router.New(
		handlers.NewLectureHandler(ctrl),
		handlers.NewChatHandler(ctrl),
		handlers.NewPlaybackHandler(ctrl),
		handlers.NewImportHandler(ctrl, cfg.MaxUploadBytes()),
		handlers.NewLibraryHandler(ctrl),
		handlers.NewQuizHandler(ctrl),
		handlers.NewDashboardHandler(ctrl),
		handlers.NewSettingsHandler(ctrl),
		wsHub,
		aiLimiter,
		media.Dir(),
		cfg.FrontendURL,
	)

	// Uploads and media analysis can take minutes.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown failed", "error", err)
		}
		workerPool.Stop()
	}()

	log.Info(fmt.Sprintf("✓ Lectura Dashboard ready on http://localhost:%s", cfg.Port))
	log.Info(fmt.Sprintf("  API: http://localhost:%s/api/v1", cfg.Port))
	log.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", "error", err)
	}
	<-done
}
