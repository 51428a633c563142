package entity

import "time"

// Tipos de transacción de inventario.
const (
	TransactionTypeAddition   = "addition"   // entrada (cantidad positiva)
	TransactionTypeRemoval    = "removal"    // salida (cantidad negativa)
	TransactionTypeAdjustment = "adjustment" // recuento correctivo explícito
)

// InventoryTransaction es un asiento inmutable del libro de inventario.
// Invariante: NewStock - PreviousStock == Quantity, y PreviousStock coincide
// con el NewStock del asiento inmediatamente anterior del mismo producto.
type InventoryTransaction struct {
	ID            string
	Seq           int64 // orden total por producto, asignado por la BD
	ProductID     string
	Type          string // addition, removal, adjustment
	Quantity      int    // con signo, nunca cero
	PreviousStock int
	NewStock      int
	Reason        string // opcional
	Actor         string // opcional, identificador opaco para auditoría
	CreatedAt     time.Time
}

// TransactionTypeFor clasifica un ajuste por el signo de la cantidad.
// El tipo "adjustment" se reserva para la operación explícita de recuento;
// el motivo (reason) es solo una etiqueta de presentación, nunca cambia el tipo.
func TransactionTypeFor(quantity int) string {
	if quantity > 0 {
		return TransactionTypeAddition
	}
	return TransactionTypeRemoval
}
