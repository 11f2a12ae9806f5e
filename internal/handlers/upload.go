package handlers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	MaxAvatarSize    = 2 * 1024 * 1024 // 2MB
	UploadDir        = "./uploads"
	AllowedImageExts = ".jpg,.jpeg,.png,.gif,.webp"
)

// UploadAvatar stores a new avatar image and points the caller's user
// document at it.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No avatar uploaded")
	}

	if file.Size > MaxAvatarSize {
		return fail(c, fiber.StatusBadRequest, "Avatar size exceeds limit of 2MB")
	}

	// Validate image extension
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !strings.Contains(AllowedImageExts, ext) {
		return fail(c, fiber.StatusBadRequest, "Invalid image format. Allowed: jpg, jpeg, png, gif, webp")
	}

	uploadPath := filepath.Join(UploadDir, "avatars")
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create upload directory")
	}

	// Generate unique filename
	filename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	fullPath := filepath.Join(uploadPath, filename)

	if err := c.SaveFile(file, fullPath); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save avatar")
	}

	avatarURL := fmt.Sprintf("/uploads/avatars/%s", filename)
	if err := h.users.SetAvatar(c.Context(), userID, avatarURL); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to update avatar")
	}

	return created(c, fiber.Map{"url": avatarURL})
}

// GetAvatar serves uploaded avatar files
func (h *Handler) GetAvatar(c *fiber.Ctx) error {
	filename := c.Params("filename")

	// Reject path traversal attempts
	if filename == "" || filename != filepath.Base(filename) {
		return fail(c, fiber.StatusBadRequest, "Invalid filename")
	}

	filePath := filepath.Join(UploadDir, "avatars", filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fail(c, fiber.StatusNotFound, "File not found")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to open file")
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to get file info")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	c.Set("Content-Type", getContentType(ext))
	c.Set("Content-Length", fmt.Sprintf("%d", fileInfo.Size()))

	if _, err := io.Copy(c.Response().BodyWriter(), file); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to send file")
	}

	return nil
}

// getContentType returns content type based on file extension
func getContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
