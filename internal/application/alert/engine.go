package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/internal/domain/stock"
	"github.com/tu-usuario/stockwatch-api/pkg/logger"
)

const scanPageSize = 200

// ForecastSource es lo que el motor necesita del cache de pronósticos.
type ForecastSource interface {
	// Cached devuelve el pronóstico vigente sin disparar recomputación, o nil.
	Cached(productID string, horizonDays int) *entity.ForecastResult
	GetForecast(ctx context.Context, productID string, horizonDays int, useCache bool) (*entity.ForecastResult, error)
}

// Options ventanas de alerta por agotamiento proyectado.
type Options struct {
	ThresholdDays int // agotamiento dentro de esta ventana dispara warning
	CriticalDays  int // dentro de esta ventana, critical
	HorizonDays   int // horizonte con el que se consulta el cache
}

// Engine evalúa productos y administra el ciclo de vida de las alertas.
// Máquina de estados por (producto, tipo): none → active → {acknowledged →
// resolved, resolved}. Una alerta resuelta no se reabre: un nuevo disparo crea
// una alerta nueva.
type Engine struct {
	alerts   repository.AlertRepository
	products repository.ProductRepository
	source   ForecastSource
	opts     Options
	log      *logger.Logger
}

// NewEngine construye el motor de alertas.
func NewEngine(
	alerts repository.AlertRepository,
	products repository.ProductRepository,
	source ForecastSource,
	opts Options,
	log *logger.Logger,
) *Engine {
	return &Engine{
		alerts:   alerts,
		products: products,
		source:   source,
		opts:     opts,
		log:      log,
	}
}

// EvaluateProduct corre ambos chequeos sobre un producto. El pronóstico es
// opcional: con nil solo se evalúa el stock bajo (el chequeo de agotamiento
// requiere un pronóstico conocido).
func (e *Engine) EvaluateProduct(ctx context.Context, product *entity.Product, f *entity.ForecastResult) error {
	if product == nil {
		return domain.ErrProductNotFound
	}
	if err := e.checkLowStock(ctx, product); err != nil {
		return err
	}
	if f != nil {
		return e.checkDepletion(ctx, product, f)
	}
	return nil
}

// checkLowStock crea/actualiza la alerta de stock bajo, o la auto-resuelve
// cuando el estado vuelve a sufficient.
func (e *Engine) checkLowStock(ctx context.Context, product *entity.Product) error {
	status := stock.Evaluate(product.CurrentStock, product.ReorderThreshold)

	open, err := e.alerts.FindOpen(ctx, product.ID, entity.AlertTypeLowStock)
	if err != nil {
		return err
	}

	if status == stock.StatusSufficient {
		if open != nil {
			return e.autoResolve(ctx, open, "stock recuperado")
		}
		return nil
	}

	severity := entity.SeverityWarning
	message := fmt.Sprintf("El producto '%s' tiene stock bajo (%d unidades restantes, punto de reorden: %d)",
		product.Name, product.CurrentStock, product.ReorderThreshold)
	if status == stock.StatusCritical {
		severity = entity.SeverityCritical
		message = fmt.Sprintf("El producto '%s' está agotado", product.Name)
	}

	return e.upsertOpen(ctx, product.ID, entity.AlertTypeLowStock, severity, message, open)
}

// checkDepletion crea/actualiza la alerta de agotamiento proyectado cuando la
// fecha cae dentro de la ventana configurada, y la auto-resuelve cuando el
// pronóstico deja de predecir agotamiento dentro de la ventana.
func (e *Engine) checkDepletion(ctx context.Context, product *entity.Product, f *entity.ForecastResult) error {
	open, err := e.alerts.FindOpen(ctx, product.ID, entity.AlertTypePredictedDepletion)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	days, predicted := f.DaysUntilDepletion(now)
	triggering := predicted && days >= 0 && days <= e.opts.ThresholdDays

	if !triggering {
		if open != nil {
			return e.autoResolve(ctx, open, "el pronóstico ya no predice agotamiento en la ventana")
		}
		return nil
	}

	severity := entity.SeverityWarning
	if days <= e.opts.CriticalDays {
		severity = entity.SeverityCritical
	}
	message := fmt.Sprintf(
		"Se proyecta que el producto '%s' se agote en %d días (%s). Confianza: %.1f%%",
		product.Name, days, f.DepletionDate.Format("2006-01-02"), f.ConfidenceScore*100,
	)

	return e.upsertOpen(ctx, product.ID, entity.AlertTypePredictedDepletion, severity, message, open)
}

// upsertOpen crea la alerta si no hay una abierta, o actualiza severidad y
// mensaje en sitio si los hubo cambios. Nunca duplica: ante una carrera con
// otro escaneo, recarga la abierta y actualiza.
func (e *Engine) upsertOpen(ctx context.Context, productID, alertType, severity, message string, open *entity.Alert) error {
	if open == nil {
		alert := &entity.Alert{
			ID:        uuid.New().String(),
			ProductID: productID,
			AlertType: alertType,
			Severity:  severity,
			Message:   message,
			Status:    entity.AlertStatusActive,
			CreatedAt: time.Now().UTC(),
		}
		err := e.alerts.Create(ctx, alert)
		if err == nil {
			e.log.Info().
				Str("product_id", productID).
				Str("alert_type", alertType).
				Str("severity", severity).
				Msg("alerta creada")
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		// Otro escaneo ganó la carrera: seguir por la rama de actualización.
		open, err = e.alerts.FindOpen(ctx, productID, alertType)
		if err != nil || open == nil {
			return err
		}
	}

	if open.Severity == severity && open.Message == message {
		return nil
	}
	open.Severity = severity
	open.Message = message
	return e.alerts.Update(ctx, open)
}

func (e *Engine) autoResolve(ctx context.Context, alert *entity.Alert, why string) error {
	now := time.Now().UTC()
	alert.Status = entity.AlertStatusResolved
	alert.ResolvedAt = &now
	if alert.AcknowledgedAt == nil {
		alert.AcknowledgedAt = &now
	}
	if err := e.alerts.Update(ctx, alert); err != nil {
		return err
	}
	e.log.Info().
		Str("alert_id", alert.ID).
		Str("product_id", alert.ProductID).
		Str("alert_type", alert.AlertType).
		Str("reason", why).
		Msg("alerta auto-resuelta")
	return nil
}

// Acknowledge marca una alerta activa como reconocida. Reconocer una alerta
// ya reconocida es un no-op exitoso; una resuelta falla con ErrAlreadyResolved.
func (e *Engine) Acknowledge(ctx context.Context, alertID string) (*entity.Alert, error) {
	alert, err := e.getByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	switch alert.Status {
	case entity.AlertStatusResolved:
		return nil, domain.ErrAlreadyResolved
	case entity.AlertStatusAcknowledged:
		return alert, nil
	}
	now := time.Now().UTC()
	alert.Status = entity.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	if err := e.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Resolve marca una alerta como resuelta; idempotente si ya lo está.
// Si no estaba reconocida, se estampa acknowledged_at de paso.
func (e *Engine) Resolve(ctx context.Context, alertID string) (*entity.Alert, error) {
	alert, err := e.getByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status == entity.AlertStatusResolved {
		return alert, nil
	}
	now := time.Now().UTC()
	alert.Status = entity.AlertStatusResolved
	alert.ResolvedAt = &now
	if alert.AcknowledgedAt == nil {
		alert.AcknowledgedAt = &now
	}
	if err := e.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (e *Engine) getByID(ctx context.Context, alertID string) (*entity.Alert, error) {
	alert, err := e.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrAlertNotFound
	}
	return alert, nil
}

// GetByID expone la lectura de una alerta para la API.
func (e *Engine) GetByID(ctx context.Context, alertID string) (*entity.Alert, error) {
	return e.getByID(ctx, alertID)
}

// List devuelve alertas con filtros opcionales, la más reciente primero.
func (e *Engine) List(ctx context.Context, filter repository.AlertFilter) ([]*entity.Alert, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return e.alerts.List(ctx, filter)
}

// ScanAll recorre todos los productos evaluando ambos chequeos. Es re-entrante:
// correrlo dos veces seguidas sin cambios de estado no produce alertas ni
// resoluciones adicionales. La falla de un producto no aborta el lote.
func (e *Engine) ScanAll(ctx context.Context) error {
	var errs []error
	scanned := 0
	for offset := 0; ; offset += scanPageSize {
		products, err := e.products.List(ctx, scanPageSize, offset)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			break
		}
		for _, product := range products {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := e.fetchForecast(ctx, product.ID)
			if err := e.EvaluateProduct(ctx, product, f); err != nil {
				e.log.Error().Err(err).Str("product_id", product.ID).Msg("evaluación de producto falló")
				errs = append(errs, fmt.Errorf("producto %s: %w", product.ID, err))
			}
			scanned++
		}
		if len(products) < scanPageSize {
			break
		}
	}
	e.log.Info().Int("scanned", scanned).Int("failures", len(errs)).Msg("escaneo de alertas completado")
	return errors.Join(errs...)
}

// fetchForecast consulta el cache (recomputa solo si expiró). Las fallas del
// forecaster son no-fatales: el producto se evalúa sin pronóstico, salvo que
// el historial sea insuficiente, en cuyo caso se resuelve cualquier alerta de
// agotamiento abierta (no existe pronóstico que la sostenga).
func (e *Engine) fetchForecast(ctx context.Context, productID string) *entity.ForecastResult {
	f, err := e.source.GetForecast(ctx, productID, e.opts.HorizonDays, true)
	if err == nil {
		return f
	}
	if errors.Is(err, domain.ErrInsufficientHistory) {
		if open, ferr := e.alerts.FindOpen(ctx, productID, entity.AlertTypePredictedDepletion); ferr == nil && open != nil {
			_ = e.autoResolve(ctx, open, "historial insuficiente, no hay pronóstico")
		}
		return nil
	}
	e.log.Warn().Err(err).Str("product_id", productID).Msg("pronóstico no disponible, se omite el chequeo de agotamiento")
	return nil
}

// Sweep re-valida todas las alertas abiertas contra el estado actual y
// resuelve las que perdieron su condición disparadora. Cubre el caso en que el
// stock cambió sin que corriera una evaluación disparada por el ajuste.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	open, err := e.alerts.ListOpen(ctx)
	if err != nil {
		return 0, err
	}

	resolved := 0
	var errs []error
	for _, alert := range open {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}
		ok, err := e.sweepOne(ctx, alert)
		if err != nil {
			errs = append(errs, fmt.Errorf("alerta %s: %w", alert.ID, err))
			continue
		}
		if ok {
			resolved++
		}
	}
	e.log.Info().Int("open", len(open)).Int("resolved", resolved).Msg("barrido de auto-resolución completado")
	return resolved, errors.Join(errs...)
}

func (e *Engine) sweepOne(ctx context.Context, alert *entity.Alert) (bool, error) {
	product, err := e.products.GetByID(ctx, alert.ProductID)
	if err != nil {
		return false, err
	}
	if product == nil {
		// Producto eliminado del catálogo: la alerta quedó huérfana.
		return true, e.autoResolve(ctx, alert, "producto inexistente")
	}

	switch alert.AlertType {
	case entity.AlertTypeLowStock:
		if stock.Evaluate(product.CurrentStock, product.ReorderThreshold) == stock.StatusSufficient {
			return true, e.autoResolve(ctx, alert, "stock recuperado")
		}
	case entity.AlertTypePredictedDepletion:
		f, err := e.source.GetForecast(ctx, alert.ProductID, e.opts.HorizonDays, true)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientHistory) {
				return true, e.autoResolve(ctx, alert, "historial insuficiente, no hay pronóstico")
			}
			// Forecaster caído: no se puede juzgar, se deja la alerta como está.
			return false, nil
		}
		now := time.Now().UTC()
		days, predicted := f.DaysUntilDepletion(now)
		if !predicted || days < 0 || days > e.opts.ThresholdDays {
			return true, e.autoResolve(ctx, alert, "el pronóstico ya no predice agotamiento en la ventana")
		}
	}
	return false, nil
}

// StockAdjusted implementa ledger.StockObserver: re-evalúa el producto apenas
// se confirma un ajuste, usando solo el pronóstico ya cacheado (nunca
// recomputa en el camino de la petición). Best-effort: los errores se loggean.
func (e *Engine) StockAdjusted(ctx context.Context, product *entity.Product, _ *entity.InventoryTransaction) {
	f := e.source.Cached(product.ID, e.opts.HorizonDays)
	if err := e.EvaluateProduct(ctx, product, f); err != nil {
		e.log.Error().Err(err).Str("product_id", product.ID).Msg("re-evaluación tras ajuste falló")
	}
}
