package middleware

import (
	"strings"

	"go-smartretail-api/internal/repository"
	"go-smartretail-api/pkg/jwt"
	"go-smartretail-api/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the Bearer access token and sets the merchant
// identity in the request context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(response.Error("UNAUTHORIZED", "Missing authorization token", nil))
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(response.Error("UNAUTHORIZED", "Invalid authorization format. Use: Bearer <token>", nil))
		}

		claims, err := jwt.ValidateAccessToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(response.Error("UNAUTHORIZED", "Invalid or expired token", nil))
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(response.Error("UNAUTHORIZED", "User not found", nil))
		}
		if !user.IsActive {
			return c.Status(403).JSON(response.Error("FORBIDDEN", "Account is deactivated", nil))
		}

		c.Locals("user_id", user.UserID)
		c.Locals("user", user)

		return c.Next()
	}
}
