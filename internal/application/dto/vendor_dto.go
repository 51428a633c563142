package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stockwatch-api/internal/domain/vendor"
)

// VendorComparisonDTO fila de la comparación de proveedores de un producto,
// ordenada por precio unitario ascendente; el primero es el recomendado.
type VendorComparisonDTO struct {
	VendorID             string          `json:"vendor_id"`
	VendorName           string          `json:"vendor_name"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	LeadTimeDays         int             `json:"lead_time_days"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity"`
	LastUpdated          time.Time       `json:"last_updated"`
	IsRecommended        bool            `json:"is_recommended"`
}

// NewVendorComparisonList mapea la comparación de dominio a la respuesta HTTP.
func NewVendorComparisonList(list []vendor.Comparison) []VendorComparisonDTO {
	out := make([]VendorComparisonDTO, 0, len(list))
	for _, c := range list {
		out = append(out, VendorComparisonDTO{
			VendorID:             c.VendorID,
			VendorName:           c.VendorName,
			UnitPrice:            c.UnitPrice,
			LeadTimeDays:         c.LeadTimeDays,
			MinimumOrderQuantity: c.MinimumOrderQuantity,
			LastUpdated:          c.LastUpdated,
			IsRecommended:        c.IsRecommended,
		})
	}
	return out
}
