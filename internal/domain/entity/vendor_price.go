package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorPrice es el precio de un proveedor para un producto (entidad de cruce
// producto-proveedor). Entrada de solo lectura para la comparación de precios.
type VendorPrice struct {
	ID                   string
	VendorID             string
	VendorName           string
	ProductID            string
	UnitPrice            decimal.Decimal
	LeadTimeDays         int
	MinimumOrderQuantity int
	LastUpdated          time.Time
}
