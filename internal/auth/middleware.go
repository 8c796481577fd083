package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/careteam-transfer/pkg/util"
)

// AuthMiddleware validates scheduler bearer tokens on trigger routes.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle verifies the Authorization header and stores the scheduler
// identity on the request context.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals("scheduler", claims.Scheduler)
	return c.Next()
}
