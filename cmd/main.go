package main

import (
	"fmt"
	"os"
	"time"

	redisclient "github.com/quillhaven/journal-backend/internal/clients/redis"
	"github.com/quillhaven/journal-backend/internal/content"
	"github.com/quillhaven/journal-backend/internal/data/repos"
	"github.com/quillhaven/journal-backend/internal/db"
	"github.com/quillhaven/journal-backend/internal/handlers"
	"github.com/quillhaven/journal-backend/internal/middleware"
	"github.com/quillhaven/journal-backend/internal/platform/config"
	"github.com/quillhaven/journal-backend/internal/platform/envutil"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
	"github.com/quillhaven/journal-backend/internal/platform/openai"
	"github.com/quillhaven/journal-backend/internal/server"
	"github.com/quillhaven/journal-backend/internal/services"
	"github.com/quillhaven/journal-backend/internal/summarize"
)

func main() {
	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables...")
	jwtSecretKey := envutil.Str("JWT_SECRET_KEY", "")
	if jwtSecretKey == "" {
		log.Error("JWT_SECRET_KEY is required")
		os.Exit(1)
	}
	accessTokenTTL := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	refreshTokenTTL := envutil.Int("REFRESH_TOKEN_TTL", 86400)
	listenAddr := envutil.Str("LISTEN_ADDR", ":8080")

	summaryCfg, err := config.LoadSummarization()
	if err != nil {
		log.Error("Failed to load summarization config", "error", err)
		os.Exit(1)
	}

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Database auto migration failed", "error", err)
		os.Exit(1)
	}
	gdb := dbService.DB()

	// Redis (optional; summaries regenerate without it)
	summaryCache, err := redisclient.NewSummaryCache(log)
	if err != nil {
		log.Warn("Summary cache unavailable, continuing without it", "error", err)
		summaryCache = nil
	}

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	entryRepo := repos.NewEntryRepo(gdb, log)
	entryVersionRepo := repos.NewEntryVersionRepo(gdb, log)
	entryShareRepo := repos.NewEntryShareRepo(gdb, log)
	entrySummaryRepo := repos.NewEntrySummaryRepo(gdb, log)
	auditLogRepo := repos.NewAuditLogRepo(gdb, log)

	// Content pipeline
	redactor := content.NewRedactor()
	pipeline := content.NewPipeline(redactor)
	validator := summarize.NewValidator(redactor)

	// AI client
	aiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init AI client", "error", err)
		os.Exit(1)
	}
	summaryClient := summarize.NewClient(aiClient, log)

	aggregator := summarize.NewAggregator(log, pipeline, summaryClient, validator, summarize.AggregatorConfig{
		GroupSize:         summaryCfg.GroupSize,
		Concurrency:       summaryCfg.Concurrency,
		GenerationTimeout: time.Duration(summaryCfg.GenerationTimeoutSeconds) * time.Second,
		MaxAITextLength:   summaryCfg.MaxAITextLength,
	})

	// Services
	log.Info("Setting up services...")
	auditService := services.NewAuditService(log, auditLogRepo)
	authService := services.NewAuthService(
		gdb, log, userRepo, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	entryService := services.NewEntryService(
		gdb, log, entryRepo, entryVersionRepo, entryShareRepo, entrySummaryRepo, userRepo, auditService,
	)
	summaryService := services.NewSummaryService(
		log, entryRepo, entrySummaryRepo, pipeline, aggregator, summaryCache, auditService,
		summaryCfg.MaxAITextLength,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	entryHandler := handlers.NewEntryHandler(entryService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		EntryHandler:   entryHandler,
		SummaryHandler: summaryHandler,
		AuthMiddleware: authMiddleware,
	})

	log.Info("Starting server...", "addr", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
