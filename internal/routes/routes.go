package routes

import (
	"obrolan/server/internal/handlers"
	"obrolan/server/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, h *handlers.Handler) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Obrolan API is running",
		})
	})

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.StrictRateLimiter(), h.Register)
	auth.Post("/login", middleware.StrictRateLimiter(), h.Login)
	auth.Post("/refresh", middleware.StrictRateLimiter(), h.RefreshToken)
	auth.Post("/logout", middleware.AuthMiddleware, h.Logout)
	auth.Get("/me", middleware.AuthMiddleware, h.GetMe)
	auth.Get("/google", h.GoogleOAuthURL)
	auth.Get("/google/callback", h.GoogleOAuthCallback)

	// Contact routes (protected)
	contacts := api.Group("/contacts", middleware.AuthMiddleware)
	contacts.Post("/", h.AddContact)
	contacts.Get("/", h.GetContacts)

	// Message routes (protected)
	messages := api.Group("/messages", middleware.AuthMiddleware)
	messages.Post("/", h.SendMessage)
	messages.Get("/:peerId", h.GetMessages)

	// Avatar upload (protected); serving is public
	uploads := api.Group("/upload", middleware.AuthMiddleware)
	uploads.Post("/avatar", middleware.UploadRateLimiter(), h.UploadAvatar)
	app.Get("/uploads/avatars/:filename", h.GetAvatar)

	// WebSocket route (protected)
	api.Get("/ws", middleware.AuthMiddleware, h.WebSocketUpgrade, websocket.New(h.WebSocketHandler))

	// WebSocket stats (protected, for debugging)
	api.Get("/ws/stats", middleware.AuthMiddleware, h.GetWebSocketStats)
}
