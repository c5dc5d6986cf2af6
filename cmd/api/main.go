package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/sentrymeet/sentrymeet/pkg/validator"

	"github.com/sentrymeet/sentrymeet/internal/adapter/handler"
	"github.com/sentrymeet/sentrymeet/internal/adapter/repository"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/cache"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/database"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/external/stt"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/external/stt/sttmock"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/storage"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/ws"
	"github.com/sentrymeet/sentrymeet/internal/usecase/summary"
	"github.com/sentrymeet/sentrymeet/internal/usecase/transcription"
	pkgai "github.com/sentrymeet/sentrymeet/pkg/ai"
	"github.com/sentrymeet/sentrymeet/pkg/config"
	"github.com/sentrymeet/sentrymeet/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Apply migrations only when explicitly enabled in config.
	// Production deployments should manage schema via the migrate script.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run migrations via CI/CD.")
		}
		log.Println("🔄 Applying SQL migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; manage schema with the migrate script in CI/CD/production")
	}

	// Initialize Redis (optional; without it broadcasts stay process-local)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		log.Println("📦 Redis disabled; running single-instance broadcast")
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	callRepo := repository.NewCallRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Initialize STT provider
	log.Printf("🎙️  Initializing STT provider: %s", cfg.STT.Provider)
	var provider stt.Provider
	switch cfg.STT.Provider {
	case "sarvam":
		provider = stt.NewSarvamProvider(stt.SarvamConfig{
			URL:         cfg.STT.SarvamURL,
			APIKey:      cfg.STT.SarvamAPIKey,
			Model:       cfg.STT.SarvamModel,
			DialTimeout: cfg.STT.DialTimeout,
		}, logger)
	case "assemblyai":
		provider = stt.NewAssemblyAIProvider(stt.AssemblyAIConfig{
			APIKey: cfg.STT.AssemblyAIAPIKey,
		}, logger)
	case "mock":
		log.Println("⚠️  STT running in MOCK mode (no real recognizer)")
		provider = sttmock.New()
	default:
		log.Fatalf("Unknown STT provider: %s", cfg.STT.Provider)
	}

	// Initialize audio archive storage (optional)
	var archiver transcription.Archiver
	if cfg.Storage.Enabled {
		log.Println("🗄️  Initializing recording storage...")
		minioArchiver, err := storage.NewMinIOArchiver(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		archiver = minioArchiver
	} else {
		log.Println("🗄️  Recording storage disabled")
	}

	// Initialize room broadcast hub
	log.Println("📡 Initializing broadcast hub...")
	hub := ws.NewHub(redisClient, logger)
	defer hub.Close()

	// Initialize transcription service
	log.Println("🧵 Initializing transcription service...")
	transcriptionService := transcription.NewService(
		callRepo,
		transcriptRepo,
		alertRepo,
		provider,
		hub,
		archiver,
		transcription.Config{
			ProviderName:    cfg.STT.Provider,
			DefaultLanguage: cfg.STT.DefaultLanguage,
			DialTimeout:     cfg.STT.DialTimeout,
			MaxArchiveBytes: cfg.Storage.MaxArchiveBytes,
		},
		logger,
	)

	// Initialize summarization (optional)
	var summaryService *summary.Service
	if cfg.OpenRouter.APIKey != "" {
		log.Println("🧠 Initializing summarization service...")
		summarizer := pkgai.NewOpenRouterClient(pkgai.OpenRouterConfig{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Referer: cfg.OpenRouter.Referer,
			Title:   cfg.OpenRouter.Title,
		})
		summaryService = summary.NewService(transcriptRepo, summarizer, logger)
	} else {
		log.Println("🧠 Summarization disabled (no OPENROUTER_API_KEY)")
	}

	// Initialize JWT manager for optional socket identity
	var jwtManager *jwt.Manager
	if cfg.JWT.Secret != "" {
		log.Println("🔑 Initializing JWT manager...")
		jwtManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	callHandler := handler.NewCall(callRepo, transcriptRepo, alertRepo, summaryService, logger)
	socketHandler := handler.NewSocket(hub, transcriptionService, jwtManager, cfg.Server.AllowedOrigins, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, callHandler, socketHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
