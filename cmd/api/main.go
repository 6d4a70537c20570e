package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go-smartretail-api/internal/handler"
	"go-smartretail-api/internal/middleware"
	"go-smartretail-api/internal/model"
	"go-smartretail-api/internal/repository"
	"go-smartretail-api/internal/service"
	"go-smartretail-api/internal/ws"
	"go-smartretail-api/pkg/database"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{},
		&model.ApiKey{},
		&model.Category{},
		&model.Product{},
		&model.Transaction{},
		&model.TransactionItem{},
	)

	// 3. Setup WebSocket sync hub
	syncHub := ws.NewHub()
	go syncHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	apiKeyRepo := repository.NewApiKeyRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)

	authService := service.NewAuthService(userRepo, apiKeyRepo)
	productService := service.NewProductService(productRepo, db, syncHub)
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	saleService := service.NewSaleService(productRepo, txRepo, db, syncHub)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	txHandler := handler.NewTransactionHandler(saleService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "SmartRetail API v" + version,
	})

	// Middleware
	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES (before rate limiting) ============
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(response.Success(fiber.Map{"status": "healthy"}))
	})
	api.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(response.Success(fiber.Map{
			"version":     version,
			"api_version": "v1",
			"name":        "SmartRetail Open API",
		}))
	})

	// Rate limiting, keyed by API key with IP fallback
	app.Use("/api/v1", limiter.New(limiter.Config{
		Max:        envInt("RATE_LIMIT_MAX", 100),
		Expiration: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 3600)) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if key := c.Get("X-API-Key"); key != "" {
				return key
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(response.Error(
				"RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.", nil))
		},
	}))

	// Auth routes (no API key required)
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// ============ JWT-PROTECTED ROUTES ============
	authProtected := auth.Group("", middleware.RequireAuth(userRepo))
	authProtected.Get("/me", authHandler.Me)
	authProtected.Put("/profile", authHandler.UpdateProfile)
	authProtected.Post("/change-password", authHandler.ChangePassword)
	authProtected.Get("/api-keys", authHandler.ListAPIKeys)
	authProtected.Post("/api-keys", authHandler.CreateAPIKey)
	authProtected.Delete("/api-keys/:keyId", authHandler.RevokeAPIKey)

	// ============ API-KEY-PROTECTED DATA ROUTES ============
	data := api.Group("", middleware.RequireAPIKey(authService))

	// Product Routes
	data.Get("/products", productHandler.List)
	data.Get("/products/search", productHandler.Search)
	data.Get("/products/low-stock", productHandler.LowStock)
	data.Get("/products/:id", productHandler.Get)
	data.Post("/products", productHandler.Create)
	data.Put("/products/:id", productHandler.Update)
	data.Patch("/products/:id/stock", productHandler.UpdateStock)
	data.Delete("/products/:id", productHandler.Delete)

	// Category Routes
	data.Get("/categories", categoryHandler.List)
	data.Get("/categories/:id", categoryHandler.Get)
	data.Post("/categories", categoryHandler.Create)
	data.Put("/categories/:id", categoryHandler.Update)
	data.Delete("/categories/:id", categoryHandler.Delete)
	data.Get("/categories/:id/products", categoryHandler.Products)

	// Transaction Routes
	data.Get("/transactions", txHandler.List)
	data.Get("/transactions/daily-summary", txHandler.DailySummary)
	data.Get("/transactions/:id", txHandler.Get)
	data.Post("/transactions", txHandler.Create)

	// WebSocket sync feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		syncHub.Register <- c
		defer func() { syncHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
