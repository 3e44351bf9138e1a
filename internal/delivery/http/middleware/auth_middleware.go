package middleware

import (
	"context"
	"errors"
	"strings"

	"jobmatch/internal/domain/principal"
	"jobmatch/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxPrincipalKey = "principal"

type Authenticator interface {
	CurrentPrincipal(ctx context.Context, token string) (principal.Principal, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Middleware resolves the bearer token to a Principal and stores it in the
// request locals.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		p, err := m.auth.CurrentPrincipal(c.Context(), token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxPrincipalKey, p)
		return c.Next()
	}
}

// RequireRole rejects principals of any other role. It must run after
// Middleware.
func RequireRole(role principal.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p.ID == uuid.Nil {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if p.Role != role {
			return NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
		}
		return c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, or the zero value.
func PrincipalFrom(c fiber.Ctx) principal.Principal {
	p, _ := c.Locals(CtxPrincipalKey).(principal.Principal)
	return p
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
