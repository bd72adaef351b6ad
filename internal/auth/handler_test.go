package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pride-finance-backend/internal/auth"
	"pride-finance-backend/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T, password string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		JWTSecret:          testSecret,
		MasterPasswordHash: string(hash),
	}
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Post("/api/auth/login", auth.LoginHandler(cfg))

	protected := app.Group("/api", auth.JWTMiddleware(cfg))
	protected.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"subject": c.Locals(auth.CtxSubjectKey)})
	})
	return app
}

func login(t *testing.T, app *fiber.App, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(auth.LoginRequest{Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestLogin(t *testing.T) {
	cfg := testConfig(t, "open-sesame")
	app := newApp(cfg)

	t.Run("correct password issues a token", func(t *testing.T) {
		resp := login(t, app, "open-sesame")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got auth.LoginResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.NotEmpty(t, got.AccessToken)
		assert.Equal(t, "bearer", got.TokenType)
		assert.Equal(t, int(auth.TokenLifetime.Seconds()), got.ExpiresIn)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		resp := login(t, app, "guess")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing password is a bad request", func(t *testing.T) {
		resp := login(t, app, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestJWTMiddleware(t *testing.T) {
	cfg := testConfig(t, "open-sesame")
	app := newApp(cfg)

	t.Run("valid token passes and sets the subject", func(t *testing.T) {
		token, err := auth.GenerateToken(cfg.JWTSecret)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "admin", got["subject"])
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		token, err := auth.GenerateToken("another-secret-another-secret-32")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
