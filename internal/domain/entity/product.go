package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario. El catálogo (nombre, categoría,
// código de barras) lo administra otro servicio; aquí solo se muta CurrentStock,
// y siempre a través del libro de inventario.
type Product struct {
	ID               string
	SKU              string // código único
	Name             string
	Category         string
	CurrentStock     int // nunca negativo
	ReorderThreshold int
	Barcode          string          // opcional, único si existe
	UnitCost         decimal.Decimal // costo unitario de referencia
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
