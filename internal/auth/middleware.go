package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

const adminKey = "auth_admin"

// Middleware validates bearer tokens on the admin routes.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(adminKey, claims.Username)
	return c.Next()
}

// AdminFromContext retrieves the authenticated admin username.
func AdminFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(adminKey)
	if val == nil {
		return "", false
	}
	username, ok := val.(string)
	return username, ok
}
