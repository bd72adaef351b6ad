package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"pride-finance-backend/internal/config"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// LoginHandler exchanges the shared master password for a bearer token.
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Password is required")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cfg.MasterPasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Incorrect password")
		}

		token, err := GenerateToken(cfg.JWTSecret)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be created")
		}

		return c.JSON(LoginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(TokenLifetime.Seconds()),
		})
	}
}
