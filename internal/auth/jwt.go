package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLifetime bounds how long a login stays valid.
const TokenLifetime = 24 * time.Hour

// GenerateToken issues an access token for the single administrator.
func GenerateToken(secret string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
