package repository

import (
	"context"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// VendorPriceRepository define el puerto de lectura de precios de proveedor.
// El CRUD de proveedores vive en otro servicio; aquí solo se consulta.
type VendorPriceRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]entity.VendorPrice, error)
}
