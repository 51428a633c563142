package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// El índice único parcial uq_alerts_open respalda el invariante de una sola
// alerta abierta por (producto, tipo); las resueltas quedan fuera del índice
// y preservan el historial.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	sku VARCHAR(64) UNIQUE NOT NULL,
	name VARCHAR(255) NOT NULL,
	category VARCHAR(100) NOT NULL DEFAULT '',
	current_stock INTEGER NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
	reorder_threshold INTEGER NOT NULL DEFAULT 0 CHECK (reorder_threshold >= 0),
	barcode VARCHAR(64),
	unit_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory_transactions (
	id UUID PRIMARY KEY,
	seq BIGSERIAL UNIQUE NOT NULL,
	product_id UUID NOT NULL REFERENCES products(id),
	type VARCHAR(16) NOT NULL CHECK (type IN ('addition', 'removal', 'adjustment')),
	quantity INTEGER NOT NULL,
	previous_stock INTEGER NOT NULL,
	new_stock INTEGER NOT NULL CHECK (new_stock >= 0),
	reason TEXT,
	actor VARCHAR(100),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_product_created
	ON inventory_transactions(product_id, created_at DESC, seq DESC);

CREATE TABLE IF NOT EXISTS vendors (
	id UUID PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	contact_email VARCHAR(255),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vendor_prices (
	id UUID PRIMARY KEY,
	vendor_id UUID NOT NULL REFERENCES vendors(id),
	product_id UUID NOT NULL REFERENCES products(id),
	unit_price NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
	lead_time_days INTEGER NOT NULL DEFAULT 0,
	minimum_order_quantity INTEGER NOT NULL DEFAULT 1,
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (vendor_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_vendor_prices_product ON vendor_prices(product_id);

CREATE TABLE IF NOT EXISTS alerts (
	id UUID PRIMARY KEY,
	product_id UUID NOT NULL REFERENCES products(id),
	alert_type VARCHAR(32) NOT NULL CHECK (alert_type IN ('low_stock', 'predicted_depletion')),
	severity VARCHAR(16) NOT NULL CHECK (severity IN ('warning', 'critical')),
	message TEXT NOT NULL,
	status VARCHAR(16) NOT NULL CHECK (status IN ('active', 'acknowledged', 'resolved')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	acknowledged_at TIMESTAMPTZ,
	resolved_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_alerts_open
	ON alerts(product_id, alert_type)
	WHERE status IN ('active', 'acknowledged');

CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status, created_at DESC);
`

// Migrate crea el esquema si no existe. Idempotente; se ejecuta al arrancar.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
