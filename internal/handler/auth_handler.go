package handler

import (
	"go-smartretail-api/internal/service"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a merchant account and returns a token pair
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(response.Success(resp))
}

// Login authenticates with username and password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(resp))
}

// Refresh exchanges a refresh token for a new access token
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}
	if req.RefreshToken == "" {
		return c.Status(400).JSON(response.Error("MISSING_REFRESH_TOKEN", "Refresh token is required", nil))
	}

	resp, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(resp))
}

// Me returns the authenticated merchant's profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, err := h.authService.GetProfile(getUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(profile))
}

// UpdateProfile updates email and/or store name
// PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	profile, err := h.authService.UpdateProfile(getUserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(profile))
}

// ChangePassword verifies the current password before setting a new one
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	if err := h.authService.ChangePassword(getUserID(c), &req); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(fiber.Map{"message": "Password changed successfully"}))
}

// ListAPIKeys lists the merchant's API keys
// GET /api/v1/auth/api-keys
func (h *AuthHandler) ListAPIKeys(c *fiber.Ctx) error {
	keys, err := h.authService.ListAPIKeys(getUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(keys))
}

// CreateAPIKey mints a new API key, optionally with an expiry
// POST /api/v1/auth/api-keys
func (h *AuthHandler) CreateAPIKey(c *fiber.Ctx) error {
	var req service.CreateAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid JSON", nil))
	}

	key, err := h.authService.GenerateAPIKey(getUserID(c), &req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(response.Success(key))
}

// RevokeAPIKey deactivates one of the merchant's API keys
// DELETE /api/v1/auth/api-keys/:keyId
func (h *AuthHandler) RevokeAPIKey(c *fiber.Ctx) error {
	keyID, err := parseUintParam(c, "keyId")
	if err != nil {
		return c.Status(400).JSON(response.Error("VALIDATION_ERROR", "Invalid key ID", nil))
	}

	if err := h.authService.RevokeAPIKey(getUserID(c), keyID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(response.Success(fiber.Map{"message": "API key revoked"}))
}
