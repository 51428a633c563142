package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/alert"
	"github.com/tu-usuario/stockwatch-api/internal/application/dto"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

// AlertHandler maneja las peticiones HTTP de alertas.
type AlertHandler struct {
	engine *alert.Engine
}

// NewAlertHandler construye el handler.
func NewAlertHandler(engine *alert.Engine) *AlertHandler {
	return &AlertHandler{engine: engine}
}

// List devuelve alertas con filtros opcionales, la más reciente primero.
// GET /api/alerts
func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := repository.AlertFilter{
		Status:    c.Query("status"),
		AlertType: c.Query("type"),
		Severity:  c.Query("severity"),
		Limit:     c.QueryInt("limit", 0),
		Offset:    c.QueryInt("skip", 0),
	}
	list, err := h.engine.List(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"total":  len(list),
		"alerts": dto.NewAlertList(list),
	})
}

// GetByID devuelve una alerta.
// GET /api/alerts/:id
func (h *AlertHandler) GetByID(c *fiber.Ctx) error {
	a, err := h.engine.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(dto.NewAlertResponse(a))
}

// Acknowledge marca una alerta como reconocida. Re-reconocer es un no-op;
// reconocer una resuelta devuelve 409.
// POST /api/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	a, err := h.engine.Acknowledge(c.Context(), c.Params("id"))
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(dto.NewAlertResponse(a))
}

// Resolve marca una alerta como resuelta; idempotente.
// POST /api/alerts/:id/resolve
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	a, err := h.engine.Resolve(c.Context(), c.Params("id"))
	if err != nil {
		return alertError(c, err)
	}
	return c.JSON(dto.NewAlertResponse(a))
}

func alertError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAlertNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "alerta no encontrada"})
	case errors.Is(err, domain.ErrAlreadyResolved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_RESOLVED", Message: "la alerta ya fue resuelta"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
