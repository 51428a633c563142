package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

const alertColumns = `id, product_id, alert_type, severity, message, status, created_at, acknowledged_at, resolved_at`

// AlertRepo implementación de AlertRepository sobre PostgreSQL.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de alertas.
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

func scanAlert(row pgx.Row) (*entity.Alert, error) {
	var a entity.Alert
	err := row.Scan(
		&a.ID, &a.ProductID, &a.AlertType, &a.Severity, &a.Message,
		&a.Status, &a.CreatedAt, &a.AcknowledgedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta la alerta. Si ya existe una alerta abierta del mismo
// (producto, tipo), el índice único parcial la rechaza y se devuelve
// ErrDuplicate para que el motor actualice la existente.
func (r *AlertRepo) Create(ctx context.Context, alert *entity.Alert) error {
	query := `
		INSERT INTO alerts (id, product_id, alert_type, severity, message, status, created_at, acknowledged_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		alert.ID, alert.ProductID, alert.AlertType, alert.Severity, alert.Message,
		alert.Status, alert.CreatedAt, alert.AcknowledgedAt, alert.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: alerta abierta %s/%s", domain.ErrDuplicate, alert.ProductID, alert.AlertType)
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID; nil si no existe.
func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	a, err := scanAlert(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// Update persiste severidad, mensaje y transiciones de estado de la alerta.
func (r *AlertRepo) Update(ctx context.Context, alert *entity.Alert) error {
	query := `
		UPDATE alerts
		SET severity = $2, message = $3, status = $4, acknowledged_at = $5, resolved_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		alert.ID, alert.Severity, alert.Message, alert.Status,
		alert.AcknowledgedAt, alert.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update alert: alerta %s no encontrada", alert.ID)
	}
	return nil
}

// FindOpen devuelve la alerta abierta del par (producto, tipo), o nil.
func (r *AlertRepo) FindOpen(ctx context.Context, productID, alertType string) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + `
		FROM alerts
		WHERE product_id = $1 AND alert_type = $2 AND status IN ('active', 'acknowledged')`
	a, err := scanAlert(r.q.QueryRow(ctx, query, productID, alertType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	return a, nil
}

// ListOpen devuelve todas las alertas abiertas (insumo de la auto-resolución).
func (r *AlertRepo) ListOpen(ctx context.Context) ([]*entity.Alert, error) {
	query := `SELECT ` + alertColumns + `
		FROM alerts
		WHERE status IN ('active', 'acknowledged')
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// List devuelve alertas con filtros opcionales, la más reciente primero.
func (r *AlertRepo) List(ctx context.Context, filter repository.AlertFilter) ([]*entity.Alert, error) {
	var conditions []string
	var args []any

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}
	addFilter("status", filter.Status)
	addFilter("alert_type", filter.AlertType)
	addFilter("severity", filter.Severity)

	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func collectAlerts(rows pgx.Rows) ([]*entity.Alert, error) {
	var alerts []*entity.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
