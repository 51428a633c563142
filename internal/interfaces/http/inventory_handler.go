package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/dto"
	"github.com/tu-usuario/stockwatch-api/internal/application/ledger"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario.
type InventoryHandler struct {
	uc *ledger.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust registra un ajuste de stock con cantidad con signo.
// POST /api/inventory/adjustments
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}

	trx, err := h.uc.Adjust(c.Context(), ledger.AdjustInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Actor:     GetActor(c),
	})
	if err != nil {
		return adjustError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(trx))
}

// Recount registra un recuento físico; el asiento es el delta hacia la
// cantidad contada.
// POST /api/inventory/recount
func (h *InventoryHandler) Recount(c *fiber.Ctx) error {
	var in dto.RecountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}

	trx, err := h.uc.Recount(c.Context(), in.ProductID, in.CountedQuantity, in.Reason, GetActor(c))
	if err != nil {
		return adjustError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(trx))
}

func adjustError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "la cantidad no puede ser cero"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrLockTimeout):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "el producto está siendo ajustado, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// History devuelve el historial de un producto, el más reciente primero.
// GET /api/inventory/products/:id/history
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	productID := c.Params("id")
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)

	list, err := h.uc.GetHistory(c.Context(), productID, skip, limit)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"product_id":   productID,
		"transactions": dto.NewTransactionList(list),
	})
}

// Movements devuelve asientos de todos los productos, filtrables por uno.
// GET /api/inventory/movements
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)

	list, err := h.uc.GetMovements(c.Context(), productID, skip, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"total":        len(list),
		"transactions": dto.NewTransactionList(list),
	})
}
