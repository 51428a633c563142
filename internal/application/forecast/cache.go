package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/internal/domain/stock"
	"github.com/tu-usuario/stockwatch-api/pkg/logger"
)

// Options parámetros del cache de pronósticos.
type Options struct {
	TTL            time.Duration // vigencia de un resultado cacheado
	MinHistoryDays int           // días de historial mínimos para pronosticar
	Timeout        time.Duration // timeout de la llamada al forecaster
}

type cacheEntry struct {
	result      *entity.ForecastResult
	generatedAt time.Time
}

// Cache envuelve al forecaster externo con un cache por (producto, horizonte)
// con TTL, invalidación explícita y single-flight: llamadas concurrentes que
// fallan el cache colapsan en un solo cómputo compartido.
type Cache struct {
	forecaster Forecaster
	txRepo     repository.TransactionRepository
	products   repository.ProductRepository
	opts       Options
	log        *logger.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
	epochs  map[string]uint64
	group   singleflight.Group
}

// NewCache construye el cache de pronósticos.
func NewCache(
	forecaster Forecaster,
	txRepo repository.TransactionRepository,
	products repository.ProductRepository,
	opts Options,
	log *logger.Logger,
) *Cache {
	return &Cache{
		forecaster: forecaster,
		txRepo:     txRepo,
		products:   products,
		opts:       opts,
		log:        log,
		entries:    make(map[string]cacheEntry),
		epochs:     make(map[string]uint64),
	}
}

func cacheKey(productID string, horizonDays int) string {
	return fmt.Sprintf("%s:%d", productID, horizonDays)
}

// GetForecast devuelve el pronóstico del producto. Con useCache, un resultado
// vigente se devuelve sin invocar al forecaster; si no, se recomputa (una sola
// vez aunque haya llamadas concurrentes) y se reemplaza el resultado cacheado.
// Un cómputo fallido o cancelado deja el cache en su estado previo.
func (c *Cache) GetForecast(ctx context.Context, productID string, horizonDays int, useCache bool) (*entity.ForecastResult, error) {
	if horizonDays <= 0 {
		return nil, domain.ErrInvalidInput
	}

	product, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	key := cacheKey(productID, horizonDays)

	if useCache {
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && time.Since(entry.generatedAt) < c.opts.TTL {
			return entry.result, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.compute(ctx, productID, horizonDays)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.ForecastResult), nil
}

func (c *Cache) compute(ctx context.Context, productID string, horizonDays int) (*entity.ForecastResult, error) {
	// Época del producto al iniciar el cómputo. Si Invalidate corre mientras el
	// cómputo está en vuelo, el resultado quedó basado en historial viejo: se
	// devuelve a quienes lo esperan pero nunca se escribe en el cache.
	c.mu.RLock()
	epoch := c.epochs[productID]
	c.mu.RUnlock()

	// El cómputo es compartido por todos los llamadores colapsados: se desacopla
	// del contexto del primero para que su cancelación no tumbe a los demás.
	computeCtx := context.WithoutCancel(ctx)

	history, err := c.txRepo.DailyHistory(computeCtx, productID)
	if err != nil {
		return nil, err
	}

	days := historySpanDays(history)
	if days < c.opts.MinHistoryDays {
		return nil, fmt.Errorf("%w: %d días de datos, se requieren %d",
			domain.ErrInsufficientHistory, days, c.opts.MinHistoryDays)
	}

	callCtx, cancel := context.WithTimeout(computeCtx, c.opts.Timeout)
	defer cancel()

	result, err := c.forecaster.Forecast(callCtx, history, horizonDays)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w tras %s", domain.ErrForecastTimeout, c.opts.Timeout)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrForecastUnavailable, err)
	}

	now := time.Now().UTC()
	result.ProductID = productID
	result.GeneratedAt = now
	result.HorizonDays = horizonDays

	c.mu.Lock()
	if c.epochs[productID] == epoch {
		c.entries[cacheKey(productID, horizonDays)] = cacheEntry{result: result, generatedAt: now}
	}
	c.mu.Unlock()

	c.log.Debug().
		Str("product_id", productID).
		Int("horizon_days", horizonDays).
		Float64("daily_rate", result.DailyConsumptionRate).
		Msg("pronóstico recalculado")

	return result, nil
}

// historySpanDays devuelve los días calendario cubiertos por el historial.
func historySpanDays(history []repository.DailyStock) int {
	if len(history) == 0 {
		return 0
	}
	first := history[0].Date
	last := history[len(history)-1].Date
	return int(last.Sub(first).Hours()/24) + 1
}

// Cached devuelve el resultado vigente para (producto, horizonte) sin tocar al
// forecaster, o nil si no hay o expiró. Lo usa el motor de alertas para no
// disparar recomputaciones en caliente.
func (c *Cache) Cached(productID string, horizonDays int) *entity.ForecastResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(productID, horizonDays)]
	if !ok || time.Since(entry.generatedAt) >= c.opts.TTL {
		return nil
	}
	return entry.result
}

// Invalidate elimina todos los resultados cacheados del producto, forzando el
// próximo GetForecast a recomputar sin importar el TTL. Avanza la época del
// producto: un cómputo que ya estaba en vuelo no escribirá su resultado.
func (c *Cache) Invalidate(productID string) {
	prefix := productID + ":"
	c.mu.Lock()
	c.epochs[productID]++
	for key := range c.entries {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
			c.group.Forget(key)
		}
	}
	c.mu.Unlock()
}

// StockAdjusted implementa ledger.StockObserver: un ajuste significativo
// (cambió el estado del stock, o movió al menos el 25% del stock previo)
// invalida los pronósticos cacheados del producto. Los movimientos rutinarios
// pequeños mantienen el cache caliente.
func (c *Cache) StockAdjusted(_ context.Context, product *entity.Product, trx *entity.InventoryTransaction) {
	prevStatus := stock.Evaluate(trx.PreviousStock, product.ReorderThreshold)
	newStatus := stock.Evaluate(trx.NewStock, product.ReorderThreshold)

	moved := trx.Quantity
	if moved < 0 {
		moved = -moved
	}
	significant := prevStatus != newStatus || trx.PreviousStock == 0 || moved*4 >= trx.PreviousStock
	if !significant {
		return
	}

	c.Invalidate(product.ID)
	c.log.Debug().
		Str("product_id", product.ID).
		Int("quantity", trx.Quantity).
		Msg("cache de pronóstico invalidado por ajuste significativo")
}
