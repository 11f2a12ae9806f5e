package handlers

import (
	"errors"
	"log"

	"obrolan/server/internal/models"
	"obrolan/server/internal/normalize"
	"obrolan/server/internal/store"
	"obrolan/server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req.Email = normalize.Email(req.Email)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fail(c, fiber.StatusBadRequest, "Email, password, and name are required")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	user, err := h.users.Create(c.Context(), models.User{
		Email:        req.Email,
		Name:         req.Name,
		Password:     hashedPassword,
		AuthProvider: "email",
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return fail(c, fiber.StatusConflict, "Email already registered")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	if err := h.issueAuthCookies(c, user); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return created(c, user.ToResponse())
}

// Login handles user login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := h.users.GetByEmail(c.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	if user.AuthProvider == "google" {
		return fail(c, fiber.StatusBadRequest, "This account uses Google login. Please sign in with Google.")
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	// Refresh last-seen on every successful authentication
	if err := h.users.SetPresence(c.Context(), user.ID, true); err != nil {
		log.Printf("Failed to update online status: %v", err)
	}
	user.IsOnline = true

	if err := h.issueAuthCookies(c, user); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return ok(c, fiber.Map{"user": user.ToResponse()})
}

// GetMe returns current authenticated user
func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	user, err := h.users.GetByID(c.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	return ok(c, user.ToResponse())
}

// Logout clears auth cookies and marks the user offline
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	if err := h.users.SetPresence(c.Context(), userID, false); err != nil {
		log.Printf("Failed to update offline status: %v", err)
	}

	clearCookie(c, "token")
	clearCookie(c, "refresh_token")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// RefreshToken rotates the access token using the refresh cookie
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	refresh := c.Cookies("refresh_token")
	if refresh == "" {
		return fail(c, fiber.StatusUnauthorized, "No refresh token provided")
	}

	claims, err := utils.ValidateToken(refresh)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	user, err := h.users.GetByID(c.Context(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "User no longer exists")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	if err := h.issueAuthCookies(c, user); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return ok(c, user.ToResponse())
}

// issueAuthCookies signs access + refresh tokens and sets both cookies
func (h *Handler) issueAuthCookies(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return err
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID, user.Email, user.Name)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		HTTPOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: "Lax",
		MaxAge:   900, // 15 minutes
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: "Lax",
		MaxAge:   604800, // 7 days
	})
	return nil
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		HTTPOnly: true,
		MaxAge:   -1,
	})
}
