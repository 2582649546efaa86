package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/config"
	"alfredoptarigan/resumatch/internal/handlers"
	"alfredoptarigan/resumatch/internal/logger"
	"alfredoptarigan/resumatch/internal/repositories"
	"alfredoptarigan/resumatch/internal/services"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "stdout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("✅ Config loaded successfully", zap.String("analysis_mode", cfg.Analysis.Mode))

	ctx := context.Background()

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("❌ Failed to access database handle", zap.Error(err))
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	cvRepo := repositories.NewCVRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	log.Info("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	}
	if !geminiService.IsConfigured() {
		log.Warn("⚠️ GEMINI_API_KEY is not set; analyses will fail or fall back")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = services.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal("❌ Failed to initialize Redis", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("✅ Redis reply cache enabled", zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	model := services.NewModelChain(geminiService, cfg, rdb, log)

	// Initialize Qdrant
	var qdrantService services.QdrantService
	if cfg.Qdrant.Enabled() {
		qdrantService, err = services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			log.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatal("❌ Failed to initialize Qdrant collection", zap.Error(err))
		}
		log.Info("✅ Qdrant initialized successfully")
	}
	cvIndex := services.NewCVIndex(qdrantService, geminiService, log)

	analyzer := services.NewAnalyzer(model, services.AnalyzerConfig{
		Mode:        cfg.Analysis.Mode,
		Temperature: cfg.Gemini.Temperature,
	}, log)
	ranker := services.NewRanker(analyzer, cfg.Analysis.Concurrency, log)
	diagnostics := services.NewDiagnosticsService(sqlDB.PingContext, jobRepo, cvRepo, analyzer, ranker, log)
	log.Info("✅ Services initialized successfully")

	// Initialize handlers
	routes := handlers.Handlers{
		Jobs:        handlers.NewJobHandler(jobRepo, cvRepo, cvIndex, log),
		CVs:         handlers.NewCVHandler(cvRepo, storageService, services.NewTextExtractor(), cvIndex, cfg.Storage.MaxFileSize, log),
		Analyses:    handlers.NewAnalysisHandler(jobRepo, cvRepo, analysisRepo, ranker, log),
		Diagnostics: handlers.NewDiagnosticsHandler(diagnostics),
	}
	log.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ResuMatch API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		// Multipart uploads carry several CVs.
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 10,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	allowOrigins := "*"
	if origins := cfg.Server.AllowedOrigins(); len(origins) > 0 {
		allowOrigins = strings.Join(origins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		// Fiber rejects credentials combined with a wildcard origin.
		AllowCredentials: allowOrigins != "*",
	}))

	// Routes
	handlers.Register(app.Group("/api"), routes)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":       "ResuMatch API",
			"version":       version,
			"analysis_mode": cfg.Analysis.Mode,
			"endpoints":     handlers.Endpoints,
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("⚠️ Failed to close database", zap.Error(err))
	}
}
