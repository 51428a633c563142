package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/pkg/logger"
)

// Reintentos ante errores transitorios de almacenamiento (deadlock,
// falla de serialización). El bloqueo de fila tiene su propio timeout.
const (
	maxRetries   = 3
	retryBackoff = 50 * time.Millisecond
)

// UseCase es el libro de inventario: aplica ajustes de stock de forma atómica
// y serializada por producto, y registra cada cambio como asiento inmutable.
type UseCase struct {
	txRunner  TxRunner
	txRepo    repository.TransactionRepository
	products  repository.ProductRepository
	observers []StockObserver
	log       *logger.Logger
}

// NewUseCase construye el libro de inventario.
func NewUseCase(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	products repository.ProductRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		txRepo:   txRepo,
		products: products,
		log:      log,
	}
}

// Subscribe registra un observador que se notifica tras cada ajuste confirmado
// (invalidación de cache de pronósticos, re-evaluación de alertas). Llamar
// durante el wiring, antes de servir tráfico.
func (uc *UseCase) Subscribe(obs StockObserver) {
	uc.observers = append(uc.observers, obs)
}

// AdjustInput entrada para un ajuste de stock.
type AdjustInput struct {
	ProductID string
	Quantity  int    // con signo, nunca cero
	Reason    string // opcional
	Actor     string // opcional, solo auditoría
}

// Adjust aplica un ajuste de stock: bloquea la fila del producto, valida que
// el resultado no sea negativo y confirma stock + asiento como una sola
// transacción. Un ajuste rechazado no deja rastro en el libro.
func (uc *UseCase) Adjust(ctx context.Context, input AdjustInput) (*entity.InventoryTransaction, error) {
	if input.Quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return uc.commit(ctx, input.ProductID, entity.TransactionTypeFor(input.Quantity), func(current int) (int, error) {
		newStock := current + input.Quantity
		if newStock < 0 {
			return 0, fmt.Errorf("%w: actual %d, cambio solicitado %+d", domain.ErrInsufficientStock, current, input.Quantity)
		}
		return input.Quantity, nil
	}, input.Reason, input.Actor)
}

// Recount registra un recuento físico: el asiento resultante es de tipo
// "adjustment" y su cantidad es el delta necesario para llegar a la cantidad
// contada. Un recuento que coincide con el stock actual se rechaza.
func (uc *UseCase) Recount(ctx context.Context, productID string, countedQuantity int, reason, actor string) (*entity.InventoryTransaction, error) {
	if countedQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.commit(ctx, productID, entity.TransactionTypeAdjustment, func(current int) (int, error) {
		delta := countedQuantity - current
		if delta == 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return delta, nil
	}, reason, actor)
}

// commit ejecuta la mutación dentro de la transacción, con reintento acotado
// ante errores transitorios. quantityFor recibe el stock bloqueado y decide la
// cantidad del asiento (o rechaza sin efectos).
func (uc *UseCase) commit(
	ctx context.Context,
	productID, txType string,
	quantityFor func(current int) (int, error),
	reason, actor string,
) (*entity.InventoryTransaction, error) {
	var (
		trx     *entity.InventoryTransaction
		product *entity.Product
		err     error
	)
	for attempt := 1; ; attempt++ {
		trx, product, err = uc.runAdjust(ctx, productID, txType, quantityFor, reason, actor)
		if err == nil || attempt >= maxRetries || !isRetryable(err) {
			break
		}
		uc.log.Warn().Err(err).Str("product_id", productID).Int("attempt", attempt).
			Msg("reintentando ajuste tras error transitorio")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", productID).
		Str("type", trx.Type).
		Int("quantity", trx.Quantity).
		Int("new_stock", trx.NewStock).
		Str("actor", trx.Actor).
		Msg("ajuste de stock registrado")

	// Los hooks corren fuera de la transacción: el ajuste ya está confirmado.
	for _, obs := range uc.observers {
		obs.StockAdjusted(ctx, product, trx)
	}
	return trx, nil
}

func (uc *UseCase) runAdjust(
	ctx context.Context,
	productID, txType string,
	quantityFor func(current int) (int, error),
	reason, actor string,
) (*entity.InventoryTransaction, *entity.Product, error) {
	var (
		trx     *entity.InventoryTransaction
		product *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		txRepo repository.TransactionRepository,
	) error {
		// Bloquea la fila del producto: los ajustes concurrentes al mismo
		// producto se serializan aquí; productos distintos no se bloquean entre sí.
		p, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}

		quantity, err := quantityFor(p.CurrentStock)
		if err != nil {
			return err
		}

		previous := p.CurrentStock
		newStock := previous + quantity
		if err := productRepo.UpdateStock(ctx, productID, newStock); err != nil {
			return err
		}

		now := time.Now().UTC()
		trx = &entity.InventoryTransaction{
			ID:            uuid.New().String(),
			ProductID:     productID,
			Type:          txType,
			Quantity:      quantity,
			PreviousStock: previous,
			NewStock:      newStock,
			Reason:        reason,
			Actor:         actor,
			CreatedAt:     now,
		}
		if err := txRepo.Create(ctx, trx); err != nil {
			return err
		}

		snapshot := *p
		snapshot.CurrentStock = newStock
		snapshot.UpdatedAt = now
		product = &snapshot
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return trx, product, nil
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrTransientStorage)
}

// GetHistory devuelve el historial de asientos de un producto, el más
// reciente primero. Valida que el producto exista.
func (uc *UseCase) GetHistory(ctx context.Context, productID string, skip, limit int) ([]*entity.InventoryTransaction, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	skip, limit = normalizePage(skip, limit)
	return uc.txRepo.ListByProduct(ctx, productID, limit, skip)
}

// GetMovements devuelve asientos de todos los productos, o de uno si
// productID no es vacío; el más reciente primero.
func (uc *UseCase) GetMovements(ctx context.Context, productID string, skip, limit int) ([]*entity.InventoryTransaction, error) {
	skip, limit = normalizePage(skip, limit)
	return uc.txRepo.List(ctx, productID, limit, skip)
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return skip, limit
}
