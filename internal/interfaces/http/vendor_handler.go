package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/dto"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/internal/domain/vendor"
)

// VendorHandler maneja la comparación de proveedores por producto.
type VendorHandler struct {
	products repository.ProductRepository
	prices   repository.VendorPriceRepository
}

// NewVendorHandler construye el handler.
func NewVendorHandler(products repository.ProductRepository, prices repository.VendorPriceRepository) *VendorHandler {
	return &VendorHandler{products: products, prices: prices}
}

// Compare devuelve los proveedores del producto ordenados por precio unitario
// ascendente, con el recomendado marcado. Producto sin proveedores devuelve
// lista vacía, no error.
// GET /api/products/:id/vendors
func (h *VendorHandler) Compare(c *fiber.Ctx) error {
	productID := c.Params("id")

	product, err := h.products.GetByID(c.Context(), productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}

	prices, err := h.prices.ListByProduct(c.Context(), productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	compared := vendor.Compare(prices)
	return c.JSON(fiber.Map{
		"product_id": productID,
		"total":      len(compared),
		"vendors":    dto.NewVendorComparisonList(compared),
	})
}
