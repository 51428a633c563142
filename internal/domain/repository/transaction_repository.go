package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// DailyStock es un día agregado del historial de un producto: stock de cierre
// y cambio neto del día. Insumo del forecaster.
type DailyStock struct {
	Date         time.Time
	ClosingStock int
	NetChange    int
}

// TransactionRepository define el puerto de persistencia del libro de
// inventario. Los asientos son inmutables: solo Create y lecturas.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.InventoryTransaction) error
	// ListByProduct devuelve los asientos de un producto, el más reciente primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error)
	// List devuelve asientos de todos los productos (productID vacío) o de uno,
	// el más reciente primero.
	List(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error)
	// DailyHistory devuelve el historial agregado por día en orden ascendente.
	DailyHistory(ctx context.Context, productID string) ([]DailyStock, error)
}
