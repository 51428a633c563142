package repository

import (
	"context"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El catálogo crea los productos; este servicio solo lee y muta CurrentStock.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar ajustes concurrentes. Solo tiene sentido dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, id string, newStock int) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
