package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/okonenko/pharos/internal/config"
	"github.com/okonenko/pharos/internal/handlers"
	"github.com/okonenko/pharos/internal/middleware"
	"github.com/okonenko/pharos/internal/telegram"
	"github.com/okonenko/pharos/pkg/cache"
	"github.com/okonenko/pharos/pkg/logger"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	if err := cfg.Telegram.Validate(); err != nil {
		logger.Error("Invalid Telegram configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Set log level
	logger.SetLevel(logger.ParseLevel(cfg.Monitoring.LogLevel))
	logger.Info("Starting Pharos relay", map[string]any{
		"version":     "1.0.0",
		"environment": cfg.API.Environment,
	})

	// Initialize Redis with retry logic
	var redisCache *cache.Cache
	err = cache.WithRetry(context.Background(), cache.DefaultRetryConfig, func() error {
		var retryErr error
		redisCache, retryErr = cache.NewCache(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		return retryErr
	})
	if err != nil {
		logger.Error("Failed to connect to Redis", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer redisCache.Close()
	logger.Info("Connected to Redis", map[string]any{"addr": cfg.Redis.Addr})

	// Downstream chat client; token and chat id stay server-side.
	bot := telegram.NewClient(
		cfg.Telegram.APIHost,
		cfg.Telegram.Token,
		cfg.Telegram.ChatID,
		cfg.Telegram.Timeout,
	)

	// Initialize handlers
	handler := handlers.NewHandler(bot, redisCache)

	// Create Fiber app
	allowedOrigin := cfg.Security.AllowedOrigin
	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
		ServerHeader:          "Pharos",
		AppName:               "Pharos Relay v1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			logger.Error("Request error", map[string]any{
				"error": err.Error(),
				"path":  c.Path(),
				"code":  code,
			})
			middleware.SetCORSHeaders(c, allowedOrigin)
			return c.Status(code).SendString("Internal error")
		},
	})

	// Global middleware
	app.Use(middleware.Recover())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(allowedOrigin))

	// Rate limiter
	rateLimiter := middleware.NewRateLimiter(redisCache, &cfg.RateLimit)

	// Routes
	app.Get("/health", handler.Health)
	app.Get("/metrics", handler.Metrics)
	app.Post("/", rateLimiter.LimitByIP(), handler.Report)
	app.All("/", handler.MethodNotAllowed)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = app.ShutdownWithContext(ctx)
		logger.Info("Relay shutdown complete")
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	logger.Info("Pharos relay started", map[string]any{"address": addr})

	if err := app.Listen(addr); err != nil {
		logger.Error("Server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
