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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-match-bot/internal/config"
	"alfredoptarigan/resume-match-bot/internal/handlers"
	"alfredoptarigan/resume-match-bot/internal/repositories"
	"alfredoptarigan/resume-match-bot/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	if cfg.Telegram.BotToken == "" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN is required")
	}

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	sessionRepo := repositories.NewSessionRepository(db, cfg.Session.TTL)
	windowRepo := repositories.NewRateWindowRepository(db)
	logRepo := repositories.NewLogRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	logService := services.NewLogService(logRepo)
	telegramService := services.NewTelegramService(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken)
	extractor := services.NewExtractorService()
	normalizer := services.NewNormalizerService(
		extractor,
		cfg.Document.MinChars,
		cfg.Document.MaxChars,
		cfg.Document.MaxFileSize,
		cfg.Document.AllowPDF,
	)

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.RequestsPerMinute)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	log.Println("✅ Gemini initialized successfully")

	ctx := context.Background()

	var qdrantService services.QdrantService
	if cfg.QdrantEnabled() {
		qs, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qs.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		qdrantService = qs
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  Qdrant not configured, analysis prompts run without rubric grounding")
	}

	orchestrator := services.NewOrchestratorService(
		geminiService,
		qdrantService,
		telegramService,
		sessionRepo,
		logService,
		cfg.Analysis.Timeout,
		cfg.Gemini.RetryMaxAttempts,
	)

	rateLimiter := services.NewRateLimiterService(windowRepo, logService, cfg.RateLimit.RequestsPerMinute)
	adminService := services.NewAdminService(logService, cfg.Admin.Password, cfg.IsProduction())

	conversation := services.NewConversationService(
		sessionRepo,
		telegramService,
		normalizer,
		orchestrator,
		adminService,
		logService,
	)
	log.Println("✅ Services initialized successfully")

	// Start the cleanup janitor
	cleanup := services.NewCleanupService(
		sessionRepo,
		windowRepo,
		logRepo,
		cfg.Cleanup.Interval,
		cfg.Session.TTL,
		cfg.Cleanup.LogRetention,
	)
	cleanup.Start()

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(
		conversation,
		rateLimiter,
		telegramService,
		cfg.Telegram.WebhookSecret,
	)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:     "Resume Match Bot",
		ReadTimeout: 30 * time.Second,
		// Webhook responses wait for the full analysis run.
		WriteTimeout: cfg.Analysis.Timeout + 30*time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// Routes
	app.Post("/webhook/telegram", webhookHandler.HandleTelegramUpdate)

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Match Bot",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /webhook/telegram",
				"GET /api/v1/health",
			},
		})
	})

	// Register the webhook with Telegram. An empty WEBHOOK_URL detaches the
	// bot so a stale webhook does not keep swallowing updates.
	if cfg.Telegram.WebhookURL != "" {
		if err := telegramService.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			log.Fatalf("❌ Failed to register webhook: %v", err)
		}
	} else {
		log.Println("⚠️  WEBHOOK_URL not set, deregistering webhook")
		if err := telegramService.DeleteWebhook(ctx); err != nil {
			log.Printf("❌ Failed to deregister webhook: %v", err)
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		cleanup.Stop()
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
