package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/stockwatch-api/internal/application/ledger"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// Cota para la espera del bloqueo de fila del producto; vencida, el ajuste
// falla con ErrLockTimeout en lugar de encolarse indefinidamente.
const lockTimeout = "5s"

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, pasando
// repositorios atados a esa tx. Garantiza atomicidad del libro de inventario.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Los errores de bloqueo y transitorios se traducen a los
// sentinelas de dominio para que el caso de uso decida el reintento.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+lockTimeout+"'"); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	productRepo := NewProductRepository(tx)
	txRepo := NewTransactionRepository(tx)

	if err := fn(productRepo, txRepo); err != nil {
		return translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func translate(err error) error {
	switch {
	case isLockTimeout(err):
		return fmt.Errorf("%w: %v", domain.ErrLockTimeout, err)
	case isTransient(err):
		return fmt.Errorf("%w: %v", domain.ErrTransientStorage, err)
	default:
		return err
	}
}
