package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/QuestionAndAnswer/vending-api/internal/adapter/middleware"
	"github.com/QuestionAndAnswer/vending-api/internal/core/coins"
	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
)

// ActionsHandler serves the buyer actions: deposit, reset and buy.
type ActionsHandler struct {
	Service *vending.Service
}

type DepositRequest struct {
	Amount int64 `json:"amount"`
}

func (r DepositRequest) Validate() error {
	if !coins.IsDenomination(r.Amount) {
		return domain.Invalid(".amount must be one of %v values", coins.Denominations)
	}
	return nil
}

type BuyRequest struct {
	ProductID string `json:"productId"`
	Amount    int64  `json:"amount"`
}

func (r BuyRequest) Validate() error {
	if r.Amount <= 0 {
		return domain.Invalid(".amount must be positive non zero integer")
	}
	if _, err := uuid.Parse(r.ProductID); err != nil {
		return domain.Invalid(".productId is not a valid UUID")
	}
	return nil
}

func (h *ActionsHandler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	identity, ok := middleware.Identity(c)
	if !ok {
		return c.SendStatus(http.StatusForbidden)
	}

	deposit, err := h.Service.Deposit(c.Context(), identity.ID, req.Amount)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "account not found"})
	}
	if err != nil {
		slog.Error("Failed to add deposit", "error", err, "account", identity.ID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"deposit": deposit})
}

func (h *ActionsHandler) Reset(c *fiber.Ctx) error {
	identity, ok := middleware.Identity(c)
	if !ok {
		return c.SendStatus(http.StatusForbidden)
	}

	if err := h.Service.ResetDeposit(c.Context(), identity.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Error("Failed to reset deposit", "error", err, "account", identity.ID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"deposit": 0})
}

func (h *ActionsHandler) Buy(c *fiber.Ctx) error {
	var req BuyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	identity, ok := middleware.Identity(c)
	if !ok {
		return c.SendStatus(http.StatusForbidden)
	}

	productID, _ := uuid.Parse(req.ProductID)
	outcome, err := h.Service.Buy(c.Context(), identity.ID, productID, req.Amount)

	var stockErr *domain.InsufficientStockError
	var fundsErr *domain.InsufficientFundsError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "product not found"})
	case errors.As(err, &stockErr), errors.As(err, &fundsErr):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		slog.Error("Failed to commit purchase", "error", err, "account", identity.ID, "product", productID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	slog.Info("Purchase completed",
		"account", identity.ID, "product", outcome.Product.ID,
		"total", outcome.Total, "stock_left", outcome.Product.Amount)

	return c.JSON(fiber.Map{
		"product":   outcome.Product,
		"total":     outcome.Total,
		"change":    outcome.Change,
		"remaining": outcome.Remaining,
	})
}
