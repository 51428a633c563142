package dto

import (
	"time"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// AlertResponse alerta de inventario en respuestas.
type AlertResponse struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	AlertType      string     `json:"alert_type"`
	Severity       string     `json:"severity"`
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// NewAlertResponse mapea la alerta de dominio a la respuesta HTTP.
func NewAlertResponse(a *entity.Alert) AlertResponse {
	return AlertResponse{
		ID:             a.ID,
		ProductID:      a.ProductID,
		AlertType:      a.AlertType,
		Severity:       a.Severity,
		Message:        a.Message,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedAt:     a.ResolvedAt,
	}
}

// NewAlertList mapea una página de alertas.
func NewAlertList(list []*entity.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAlertResponse(a))
	}
	return out
}
