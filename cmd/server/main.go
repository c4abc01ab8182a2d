package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"medirelay/internal/adapters/http/middleware"
	"medirelay/internal/adapters/http/routes"
	"medirelay/internal/adapters/persistence/models"
	"medirelay/internal/adapters/storage"
	"medirelay/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	_ "medirelay/docs" // Swagger docs
)

// @title MediRelay API
// @version 1.0
// @description Replacement doctor marketplace API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@medirelay.fr

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The auth-token cookie is accepted too.

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg).Run(ctx); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Document storage
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}

	// Optional Redis for shared rate limiting
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("❌ Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ Redis unreachable, rate limiting fails open: %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
		defer redisClient.Close()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "MediRelay API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    int(cfg.Storage.MaxBytes) + 1024*1024,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	cronService := routes.Setup(app, db, cfg, store, middleware.NewRedisLimiter(redisClient))

	// Scheduled maintenance (reset token purge, orphan upload sweep)
	if cfg.Cron.Enabled {
		if err := cronService.Start(); err != nil {
			log.Fatalf("❌ Failed to start cron service: %v", err)
		}
		defer cronService.Stop()
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
