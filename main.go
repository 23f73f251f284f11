package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"arrowhead/config"
	"arrowhead/locks"
	"arrowhead/middleware"
	"arrowhead/routes"
	"arrowhead/worker"
)

func main() {
	logger := log.New(os.Stdout, "ARROWHEAD: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if config.AppConfig.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Error tracking; capture calls are no-ops when no DSN is set
	if config.AppConfig.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Edit locks: shared Redis store when enabled, process-local map
	// otherwise. The in-memory variant loses all locks on restart.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var locker locks.Locker
	if config.AppConfig.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Address,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
		locker = locks.NewRedisLocker(client)
		logger.Println("Using Redis-backed edit locks")
	} else {
		memLocker := locks.NewMemoryLocker()
		locker = memLocker

		janitor := worker.NewLockJanitor(memLocker, log.New(os.Stdout, "JANITOR: ", log.LstdFlags))
		go janitor.Start(ctx)
	}

	// Setup routes
	routes.SetupRoutes(app, config.DB, locker)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
