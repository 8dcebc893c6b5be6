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

type ProductHandler struct {
	Service *vending.Service
}

type ProductRequest struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Cost   int64  `json:"cost"`
}

func (r ProductRequest) Validate() error {
	if len(r.Name) < 2 {
		return domain.Invalid(".name must be at least 2 symbols")
	}
	if r.Amount < 0 {
		return domain.Invalid(".amount must be zero or positive number")
	}
	if r.Cost < 0 {
		return domain.Invalid(".cost must be zero or positive number")
	}
	if r.Cost%coins.Smallest != 0 {
		return domain.Invalid(".cost must be multiple of %d", coins.Smallest)
	}
	return nil
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req ProductRequest
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

	id, err := h.Service.CreateProduct(c.Context(), identity, req.Name, req.Amount, req.Cost)
	if err != nil {
		slog.Error("Failed to create product", "error", err, "seller", identity.ID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	slog.Info("Product created", "id", id, "seller", identity.ID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Service.Products(c.Context())
	if err != nil {
		slog.Error("Failed to list products", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(products)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "id must be a valid UUID"})
	}

	var req ProductRequest
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

	err = h.Service.UpdateProduct(c.Context(), identity, id, req.Name, req.Amount, req.Cost)
	if errors.Is(err, domain.ErrDenied) {
		return c.SendStatus(http.StatusForbidden)
	}
	if err != nil {
		slog.Error("Failed to update product", "error", err, "id", id)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.SendStatus(http.StatusOK)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "id must be a valid UUID"})
	}

	identity, ok := middleware.Identity(c)
	if !ok {
		return c.SendStatus(http.StatusForbidden)
	}

	err = h.Service.DeleteProduct(c.Context(), identity, id)
	if errors.Is(err, domain.ErrDenied) {
		return c.SendStatus(http.StatusForbidden)
	}
	if err != nil {
		slog.Error("Failed to delete product", "error", err, "id", id)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.SendStatus(http.StatusOK)
}
