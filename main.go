package main

import (
	"context"
	"log"
	"os"

	"obrolan/server/internal/database"
	"obrolan/server/internal/handlers"
	"obrolan/server/internal/routes"
	"obrolan/server/internal/store"
	"obrolan/server/internal/typing"
	ws "obrolan/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		users    store.Users
		contacts store.Contacts
		messages store.Messages
	)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL != "" {
		pool, err := database.Connect(databaseURL)
		if err != nil {
			log.Fatalf("❌ Database connection failed: %v", err)
		}
		defer pool.Close()

		if err := database.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalf("❌ Schema setup failed: %v", err)
		}

		users = store.NewUsersStore(pool)
		contacts = store.NewContactsStore(pool)
		messages = store.NewMessagesStore(pool)
	} else {
		// In-memory fallback for local development without Postgres.
		// Data does not survive a restart.
		log.Println("⚠️  DATABASE_URL not set, using in-memory store")
		mem := store.NewMemoryStore()
		users, contacts, messages = mem, mem, mem
	}

	typingStore := store.NewTypingStore(
		getEnv("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		store.DefaultTypingTTL,
	)
	defer typingStore.Close()

	// WebSocket hub and debounced typing signaler
	hub := ws.NewHub(users, contacts)
	signaler := typing.NewSignaler(typingStore, typing.DefaultWindow, hub.BroadcastTyping)
	defer signaler.Close()
	go hub.Run()

	app := fiber.New(fiber.Config{
		AppName:      "Obrolan API v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	h := handlers.New(users, contacts, messages, hub, signaler)
	routes.SetupRoutes(app, h)

	port := getEnv("PORT", "8080")
	log.Printf("🚀 Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
