package middleware

import (
	"errors"

	"go-smartretail-api/internal/service"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireAPIKey authenticates data routes via the X-API-Key header.
// On success the owning merchant's identity is set in the request context.
func RequireAPIKey(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			return c.Status(401).JSON(response.Error(
				"UNAUTHORIZED", "API key is required. Please include X-API-Key header", nil))
		}

		key, err := authService.AuthenticateAPIKey(apiKey)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrKeyExpired):
				return c.Status(401).JSON(response.Error("UNAUTHORIZED", "API key has expired", nil))
			case errors.Is(err, service.ErrAccountDeactivated):
				return c.Status(403).JSON(response.Error("FORBIDDEN", "Account is deactivated", nil))
			default:
				return c.Status(401).JSON(response.Error("UNAUTHORIZED", "Invalid API key", nil))
			}
		}

		c.Locals("user_id", key.UserID)
		c.Locals("user", key.User)
		c.Locals("api_key_id", key.KeyID)

		return c.Next()
	}
}
