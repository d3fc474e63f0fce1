// main.go - wellspace backend
package main

import (
	"log"
	"os"
	"time"
	"wellspace/database"
	"wellspace/handlers"
	"wellspace/handlers/admin"
	"wellspace/middleware"
	"wellspace/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	logger := newLogger()
	defer logger.Sync()

	// Initialize database (runs migrations)
	database.InitDB()
	db := database.GetDB()

	// Seed the achievement catalog on a fresh install
	seedFile := getEnv("ACHIEVEMENTS_FILE", "./data/achievements.json")
	if err := services.SeedCatalogFromFile(db, seedFile); err != nil {
		log.Printf("⚠️ Failed to seed achievement catalog: %v", err)
	}

	// Wire services
	hub := services.NewAchievementEventHub()
	reflections := services.NewReflectionService(db, logger)
	engine := services.NewAchievementEngine(db, reflections, hub, logger)
	catalog := services.NewCatalogService(db, logger)
	query := services.NewAchievementQueryService(db)

	handlers.InitAchievementHandlers(catalog, query)
	handlers.InitReflectionHandlers(reflections, engine, logger)
	handlers.InitWSHandlers(hub)
	admin.InitAdminHandlers(catalog)

	// Background guest cleanup
	cleanup := services.NewCleanupService(db, logger)
	cleanup.Start()
	defer cleanup.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// Achievement catalog (public; admin tokens see hidden entries)
	achievementGroup := api.Group("/achievements")
	achievementGroup.Use(middleware.OptionalAuthMiddleware)
	achievementGroup.Get("/", handlers.GetAchievements)
	achievementGroup.Get("/categories", handlers.GetCategories)
	achievementGroup.Get("/category/:category", handlers.GetAchievementsByCategory)
	achievementGroup.Get("/:id", handlers.GetAchievement)

	// User-scoped achievement queries
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me/achievements", handlers.GetUserAchievements)
	userGroup.Get("/me/achievements/completed", handlers.GetCompletedAchievements)
	userGroup.Get("/me/achievements/recent", handlers.GetRecentAchievements)

	// Reflection routes (the engine's inbound trigger)
	reflectionGroup := api.Group("/reflections")
	reflectionGroup.Use(middleware.AuthMiddleware)
	reflectionGroup.Post("/", handlers.CreateReflection)
	reflectionGroup.Get("/", handlers.GetReflections)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/achievements", admin.GetAchievements)
	adminProtected.Post("/achievements", admin.CreateAchievement)
	adminProtected.Put("/achievements/:id", admin.UpdateAchievement)
	adminProtected.Delete("/achievements/:id", admin.DeleteAchievement)

	// Achievement unlock feed
	app.Use("/ws", handlers.WebSocketUpgrade)
	app.Get("/ws/achievements", handlers.AchievementSocket)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := getEnv("PORT", "3000")

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🌐 Achievement feed available at ws://localhost:%s/ws/achievements", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return logger
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
