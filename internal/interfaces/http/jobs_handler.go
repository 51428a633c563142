package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/dto"
	"github.com/tu-usuario/stockwatch-api/internal/application/scheduler"
)

// JobsHandler dispara bajo demanda los trabajos de fondo del scheduler.
// Los trabajos son idempotentes, así que un disparo manual junto al tick
// periódico es inofensivo.
type JobsHandler struct {
	sched *scheduler.Scheduler
}

// NewJobsHandler construye el handler.
func NewJobsHandler(sched *scheduler.Scheduler) *JobsHandler {
	return &JobsHandler{sched: sched}
}

// Scan corre el escaneo de alertas sobre todos los productos.
// POST /api/jobs/scan
func (h *JobsHandler) Scan(c *fiber.Ctx) error {
	if err := h.sched.TriggerScan(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SCAN_FAILED", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "escaneo de alertas completado"})
}

// Sweep corre el barrido de auto-resolución de alertas abiertas.
// POST /api/jobs/sweep
func (h *JobsHandler) Sweep(c *fiber.Ctx) error {
	resolved, err := h.sched.TriggerSweep(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SWEEP_FAILED", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "barrido completado", "resolved": resolved})
}

// RefreshForecasts fuerza la recomputación del pronóstico de cada producto.
// POST /api/jobs/refresh-forecasts
func (h *JobsHandler) RefreshForecasts(c *fiber.Ctx) error {
	if err := h.sched.TriggerRefresh(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "REFRESH_FAILED", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "refresco de pronósticos completado"})
}
