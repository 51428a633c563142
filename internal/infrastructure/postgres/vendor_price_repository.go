package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

var _ repository.VendorPriceRepository = (*VendorPriceRepo)(nil)

// VendorPriceRepo implementación de lectura de precios de proveedor.
type VendorPriceRepo struct {
	q Querier
}

// NewVendorPriceRepository construye el adaptador de precios de proveedor.
func NewVendorPriceRepository(q Querier) *VendorPriceRepo {
	return &VendorPriceRepo{q: q}
}

// ListByProduct devuelve los precios de todos los proveedores para un producto.
// Sin orden garantizado: el ranking lo hace el dominio.
func (r *VendorPriceRepo) ListByProduct(ctx context.Context, productID string) ([]entity.VendorPrice, error) {
	query := `
		SELECT vp.id, vp.vendor_id, v.name, vp.product_id, vp.unit_price,
		       vp.lead_time_days, vp.minimum_order_quantity, vp.last_updated
		FROM vendor_prices vp
		JOIN vendors v ON v.id = vp.vendor_id
		WHERE vp.product_id = $1`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list vendor prices: %w", err)
	}
	defer rows.Close()

	var prices []entity.VendorPrice
	for rows.Next() {
		var p entity.VendorPrice
		err := rows.Scan(
			&p.ID, &p.VendorID, &p.VendorName, &p.ProductID, &p.UnitPrice,
			&p.LeadTimeDays, &p.MinimumOrderQuantity, &p.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan vendor price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
