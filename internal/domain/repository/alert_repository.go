package repository

import (
	"context"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// AlertFilter filtros opcionales para listar alertas (campo vacío = sin filtro).
type AlertFilter struct {
	Status    string
	AlertType string
	Severity  string
	Limit     int
	Offset    int
}

// AlertRepository define el puerto de persistencia para Alert (DIP).
// La unicidad de alerta abierta por (producto, tipo) la garantiza un índice
// único parcial; Create debe fallar ante un duplicado abierto.
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	GetByID(ctx context.Context, id string) (*entity.Alert, error)
	Update(ctx context.Context, alert *entity.Alert) error
	// FindOpen devuelve la alerta abierta (active/acknowledged) del par
	// (producto, tipo), o nil si no existe.
	FindOpen(ctx context.Context, productID, alertType string) (*entity.Alert, error)
	ListOpen(ctx context.Context) ([]*entity.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]*entity.Alert, error)
}
