package ledger

import (
	"context"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la actualización del stock y el
// asiento del libro se confirmen como una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		txRepo repository.TransactionRepository,
	) error) error
}

// StockObserver se notifica después de un ajuste confirmado (commit incluido).
// Las implementaciones no deben devolver error: una falla en un hook jamás
// afecta al ajuste ya confirmado.
type StockObserver interface {
	StockAdjusted(ctx context.Context, product *entity.Product, trx *entity.InventoryTransaction)
}
