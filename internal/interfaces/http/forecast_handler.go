package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/dto"
	"github.com/tu-usuario/stockwatch-api/internal/application/forecast"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
)

// ForecastHandler maneja las peticiones HTTP de pronósticos.
type ForecastHandler struct {
	cache              *forecast.Cache
	defaultHorizonDays int
}

// NewForecastHandler construye el handler.
func NewForecastHandler(cache *forecast.Cache, defaultHorizonDays int) *ForecastHandler {
	return &ForecastHandler{cache: cache, defaultHorizonDays: defaultHorizonDays}
}

// Get devuelve el pronóstico de agotamiento del producto. use_cache=false
// fuerza la recomputación.
// GET /api/products/:id/forecast
func (h *ForecastHandler) Get(c *fiber.Ctx) error {
	productID := c.Params("id")
	horizonDays := c.QueryInt("horizon_days", h.defaultHorizonDays)
	useCache := c.QueryBool("use_cache", true)

	f, err := h.cache.GetForecast(c.Context(), productID, horizonDays, useCache)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "horizon_days debe ser positivo"})
		case errors.Is(err, domain.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		case errors.Is(err, domain.ErrInsufficientHistory):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_HISTORY", Message: err.Error()})
		case errors.Is(err, domain.ErrForecastTimeout):
			return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "FORECAST_TIMEOUT", Message: "el forecaster no respondió a tiempo"})
		case errors.Is(err, domain.ErrForecastUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "FORECAST_UNAVAILABLE", Message: "el forecaster no está disponible"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(dto.NewForecastResponse(f))
}
