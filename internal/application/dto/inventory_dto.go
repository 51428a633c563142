package dto

import (
	"time"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Quantity lleva signo: positivo repone, negativo consume. Nunca cero.
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// RecountRequest body para POST /api/inventory/recount: la cantidad contada
// físicamente, de la que se deriva el asiento de ajuste.
type RecountRequest struct {
	ProductID       string `json:"product_id"`
	CountedQuantity int    `json:"counted_quantity"`
	Reason          string `json:"reason,omitempty"`
}

// TransactionResponse asiento del libro de inventario en respuestas.
type TransactionResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"transaction_type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewTransactionResponse mapea el asiento de dominio a la respuesta HTTP.
func NewTransactionResponse(t *entity.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		ProductID:     t.ProductID,
		Type:          t.Type,
		Quantity:      t.Quantity,
		PreviousStock: t.PreviousStock,
		NewStock:      t.NewStock,
		Reason:        t.Reason,
		Actor:         t.Actor,
		CreatedAt:     t.CreatedAt,
	}
}

// NewTransactionList mapea una página de asientos.
func NewTransactionList(list []*entity.InventoryTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}
