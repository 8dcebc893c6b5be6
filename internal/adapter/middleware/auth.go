package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/session"
)

// identityKey is the Locals slot Protected stores the caller identity in.
const identityKey = "identity"

// Protected resolves the session cookie into an identity. Requests without
// a live session get a bare 403, the same response as every other
// authorization failure.
func Protected(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token == "" {
			return c.SendStatus(fiber.StatusForbidden)
		}

		identity, ok := sessions.Get(token)
		if !ok {
			return c.SendStatus(fiber.StatusForbidden)
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireRole rejects callers whose role does not match. Runs after
// Protected.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := Identity(c)
		if !ok || identity.Role != role {
			return c.SendStatus(fiber.StatusForbidden)
		}
		return c.Next()
	}
}

// Identity pulls the caller identity stored by Protected.
func Identity(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
