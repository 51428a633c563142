package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, seq, product_id, type, quantity, previous_stock, new_stock, reason, actor, created_at`

// TransactionRepo implementación del libro de inventario sobre PostgreSQL
// (usable con pool o tx). Los asientos son append-only: no hay Update ni Delete.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste un asiento. La BD asigna seq (bigserial), que da el orden
// total consistente con el orden de adquisición del bloqueo de fila.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.InventoryTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_transactions (id, product_id, type, quantity, previous_stock, new_stock, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	reason := (*string)(nil)
	if t.Reason != "" {
		reason = &t.Reason
	}
	actor := (*string)(nil)
	if t.Actor != "" {
		actor = &t.Actor
	}
	err := r.q.QueryRow(ctx, query,
		t.ID, t.ProductID, t.Type, t.Quantity, t.PreviousStock, t.NewStock,
		reason, actor, t.CreatedAt,
	).Scan(&t.Seq)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) list(ctx context.Context, where string, args []any, limit, offset int) ([]*entity.InventoryTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []*entity.InventoryTransaction
	for rows.Next() {
		var t entity.InventoryTransaction
		var reason, actor *string
		err := rows.Scan(
			&t.ID, &t.Seq, &t.ProductID, &t.Type, &t.Quantity,
			&t.PreviousStock, &t.NewStock, &reason, &actor, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if reason != nil {
			t.Reason = *reason
		}
		if actor != nil {
			t.Actor = *actor
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

// ListByProduct devuelve los asientos de un producto, el más reciente primero.
func (r *TransactionRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	return r.list(ctx, " WHERE product_id = $1", []any{productID}, limit, offset)
}

// List devuelve asientos de todos los productos o filtrados por uno.
func (r *TransactionRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	if productID == "" {
		return r.list(ctx, "", nil, limit, offset)
	}
	return r.ListByProduct(ctx, productID, limit, offset)
}

// DailyHistory agrega el historial por día (stock de cierre y cambio neto),
// en orden ascendente. Insumo del forecaster.
func (r *TransactionRepo) DailyHistory(ctx context.Context, productID string) ([]repository.DailyStock, error) {
	// El stock de cierre del día es el new_stock del último asiento del día
	// según el orden total (seq).
	query := `
		SELECT created_at::date AS day,
		       (array_agg(new_stock ORDER BY seq DESC))[1] AS closing_stock,
		       COALESCE(SUM(quantity), 0)::int AS net_change
		FROM inventory_transactions
		WHERE product_id = $1
		GROUP BY day
		ORDER BY day`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("daily history: %w", err)
	}
	defer rows.Close()

	var history []repository.DailyStock
	for rows.Next() {
		var d repository.DailyStock
		if err := rows.Scan(&d.Date, &d.ClosingStock, &d.NetChange); err != nil {
			return nil, fmt.Errorf("scan daily history: %w", err)
		}
		history = append(history, d)
	}
	return history, rows.Err()
}
