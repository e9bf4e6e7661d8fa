package main

import (
	"connecthub/configs"
	v1 "connecthub/internal/api/v1"
	"connecthub/internal/api/v1/handlers"
	"connecthub/internal/middleware"
	"connecthub/internal/repository"
	"connecthub/pkg/database"
	"connecthub/pkg/logger"

	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	// Initialize loggers
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	// Load config
	cfg := configs.LoadConfig()

	// Initialize database
	db := database.ConnectDB(cfg)
	defer db.Close()

	logger.SystemLogger.Info("Database Connected")

	// Create tables if they don't exist yet
	repository.CreateTableIfNotExists(db)

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	// Register API routes with the shared handler set
	h := handlers.New(db)
	v1.RegisterRoutes(app, h)

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
