package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"smartrecruit/resume-analyzer/internal/config"
	"smartrecruit/resume-analyzer/internal/handlers"
	"smartrecruit/resume-analyzer/internal/repositories"
	"smartrecruit/resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	resultRepo := repositories.NewResultRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	extractor := services.NewExtractorService()
	detector := services.NewLanguageDetector(
		cfg.Analysis.SupportedLanguages,
		cfg.Analysis.DefaultLanguage,
		cfg.Analysis.MinTextLength,
	)
	preprocessor := services.NewPreprocessorService()
	log.Println("✅ Pipeline services initialized successfully")

	// Embedding backend (shared, lazily-initialized handle)
	embedder := services.NewGeminiEmbedder(cfg.Gemini.APIKey)

	// Vocabulary index
	vocabulary, err := services.NewVocabularyIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize vocabulary index: %v", err)
	}

	if err := vocabulary.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize vocabulary collection: %v", err)
	}
	log.Println("✅ Vocabulary index initialized successfully")

	featureExtractor := services.NewFeatureExtractorService(
		embedder,
		vocabulary,
		cfg.Analysis.SimilarityThreshold,
	)

	scorer := services.NewScorerService(services.ScoringWeights{
		Skills:          cfg.Analysis.SkillsWeight,
		Experience:      cfg.Analysis.ExperienceWeight,
		Education:       cfg.Analysis.EducationWeight,
		RequiredFactor:  cfg.Analysis.RequiredSkillFactor,
		PreferredFactor: cfg.Analysis.PreferredSkillFactor,
	})

	analyzer := services.NewAnalyzerService(
		docRepo,
		resultRepo,
		extractor,
		detector,
		preprocessor,
		featureExtractor,
		scorer,
		cfg.Worker.StageTimeout,
	)
	log.Println("✅ Analyzer service initialized")

	// Completion events for the notification collaborator
	notifier := services.NewNotifier()
	notifier.Subscribe(services.NewNotificationRecorder(notificationRepo))

	// Initialize worker
	worker := services.NewWorker(
		jobRepo,
		analyzer,
		notifier,
		cfg.Worker.Concurrency,
		cfg.Worker.RetryMaxAttempts,
		cfg.Worker.RetryInitialDelay,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(
		docRepo,
		storageService,
		cfg.Storage.MaxFileSize,
	)
	analyzeHandler := handlers.NewAnalyzeHandler(
		jobRepo,
		docRepo,
		worker,
	)
	resultHandler := handlers.NewResultHandler(jobRepo, resultRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SmartRecruit Resume Analyzer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/documents", uploadHandler.HandleUpload)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Post("/jobs/:id/cancel", analyzeHandler.HandleCancel)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Get("/applications/:id/result", resultHandler.HandleGetApplicationResult)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "SmartRecruit Resume Analyzer",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/documents",
				"POST /api/v1/analyze",
				"POST /api/v1/jobs/:id/cancel",
				"GET /api/v1/result/:id",
				"GET /api/v1/applications/:id/result",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
