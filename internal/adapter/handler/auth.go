package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/session"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
)

type AuthHandler struct {
	Service  *vending.Service
	Sessions *session.Store
	MaxAge   time.Duration
	Secure   bool
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	identity, err := h.Service.Login(c.Context(), req.Name, req.Password)
	if errors.Is(err, domain.ErrDenied) {
		// Same answer for unknown name and wrong password.
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "incorrect username or password"})
	}
	if err != nil {
		slog.Error("Login failed", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	token, err := h.Sessions.Create(identity)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		MaxAge:   int(h.MaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	slog.Info("Session opened", "user", identity.Name, "role", identity.Role)
	return c.SendStatus(http.StatusOK)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(session.CookieName); token != "" {
		h.Sessions.Delete(token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.SendStatus(http.StatusOK)
}

// WhoAmI returns the caller's identity, or an empty object for anonymous
// callers. Never an error.
func (h *AuthHandler) WhoAmI(c *fiber.Ctx) error {
	if token := c.Cookies(session.CookieName); token != "" {
		if identity, ok := h.Sessions.Get(token); ok {
			return c.JSON(identity)
		}
	}
	return c.JSON(fiber.Map{})
}
