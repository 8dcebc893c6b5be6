package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
)

type UserHandler struct {
	Service *vending.Service
}

// RegisterRequest is the registration payload. Only buyers self-register;
// sellers are provisioned by the operator.
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Deposit  int64  `json:"deposit"`
	Role     string `json:"role"`
}

func (r RegisterRequest) Validate() error {
	if len(r.Name) < 2 {
		return domain.Invalid(".name must be at least 2 symbols")
	}
	if r.Deposit < 0 {
		return domain.Invalid(".deposit must be positive integer number")
	}
	if r.Role != string(domain.RoleBuyer) {
		return domain.Invalid(".role may be one of [%s]", domain.RoleBuyer)
	}
	if len(r.Password) < 4 {
		return domain.Invalid(".password must be at least 4 symbols")
	}
	return nil
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := h.Service.Register(c.Context(), req.Name, req.Password, req.Deposit)
	if errors.Is(err, domain.ErrDuplicateName) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "username already in use"})
	}
	if err != nil {
		slog.Error("Failed to register account", "error", err, "name", req.Name)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	slog.Info("Account registered", "id", id, "name", req.Name)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

// List exposes only public account fields.
func (h *UserHandler) List(c *fiber.Ctx) error {
	accounts, err := h.Service.Accounts(c.Context())
	if err != nil {
		slog.Error("Failed to list accounts", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	type listedAccount struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	out := make([]listedAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, listedAccount{ID: a.ID, Name: a.Name})
	}
	return c.JSON(out)
}
