package entity

import "time"

// Tipos de alerta.
const (
	AlertTypeLowStock           = "low_stock"
	AlertTypePredictedDepletion = "predicted_depletion"
)

// Severidades.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Estados del ciclo de vida. Una alerta resuelta nunca se reabre: un nuevo
// disparo después de resolver crea una alerta nueva (se preserva el historial).
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert es una alerta de inventario. Invariante: a lo sumo una alerta abierta
// (active/acknowledged) por par (producto, tipo); la respalda un índice único
// parcial en la BD.
type Alert struct {
	ID             string
	ProductID      string
	AlertType      string // low_stock, predicted_depletion
	Severity       string // warning, critical
	Message        string
	Status         string // active, acknowledged, resolved
	CreatedAt      time.Time
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
}

// IsOpen indica si la alerta sigue abierta (activa o reconocida).
func (a *Alert) IsOpen() bool {
	return a.Status == AlertStatusActive || a.Status == AlertStatusAcknowledged
}
