package forecast_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockwatch-api/internal/application/forecast"
	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// stubForecaster cuenta invocaciones y permite inyectar latencia y errores.
type stubForecaster struct {
	calls int32
	delay time.Duration
	err   error
}

func (f *stubForecaster) Forecast(ctx context.Context, history []repository.DailyStock, horizonDays int) (*entity.ForecastResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.ForecastResult{DailyConsumptionRate: 2.5, ConfidenceScore: 0.8}, nil
}

func (f *stubForecaster) callCount() int { return int(atomic.LoadInt32(&f.calls)) }

// gatedForecaster retiene cada cómputo en vuelo hasta que el test lo libere,
// para ejercitar carreras entre cómputo, invalidación y cancelación.
type gatedForecaster struct {
	mu      sync.Mutex
	rate    float64
	calls   int32
	entered chan struct{}
	release chan struct{}
}

func newGatedForecaster(rate float64) *gatedForecaster {
	return &gatedForecaster{
		rate:    rate,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (f *gatedForecaster) Forecast(ctx context.Context, _ []repository.DailyStock, _ int) (*entity.ForecastResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.entered <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.release:
	}
	f.mu.Lock()
	rate := f.rate
	f.mu.Unlock()
	return &entity.ForecastResult{DailyConsumptionRate: rate, ConfidenceScore: 0.8}, nil
}

func (f *gatedForecaster) setRate(r float64) {
	f.mu.Lock()
	f.rate = r
	f.mu.Unlock()
}

func (f *gatedForecaster) callCount() int { return int(atomic.LoadInt32(&f.calls)) }

type stubHistory struct {
	days map[string][]repository.DailyStock
}

func (s *stubHistory) Create(_ context.Context, _ *entity.InventoryTransaction) error { return nil }
func (s *stubHistory) ListByProduct(_ context.Context, _ string, _, _ int) ([]*entity.InventoryTransaction, error) {
	return nil, nil
}
func (s *stubHistory) List(_ context.Context, _ string, _, _ int) ([]*entity.InventoryTransaction, error) {
	return nil, nil
}
func (s *stubHistory) DailyHistory(_ context.Context, productID string) ([]repository.DailyStock, error) {
	return s.days[productID], nil
}

type stubProducts struct {
	byID map[string]*entity.Product
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return s.byID[id], nil
}
func (s *stubProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return s.GetByID(ctx, id)
}
func (s *stubProducts) UpdateStock(_ context.Context, _ string, _ int) error { return nil }
func (s *stubProducts) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}

// historyDays genera un historial diario que cubre n días hasta hoy.
func historyDays(n, closingStock int) []repository.DailyStock {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	out := make([]repository.DailyStock, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, repository.DailyStock{
			Date:         today.AddDate(0, 0, -i),
			ClosingStock: closingStock,
			NetChange:    -1,
		})
	}
	return out
}

const (
	productID = "11111111-1111-1111-1111-111111111111"
	horizon   = 30
)

func newTestCache(f forecast.Forecaster, opts forecast.Options, history []repository.DailyStock) (*forecast.Cache, *stubProducts) {
	products := &stubProducts{byID: map[string]*entity.Product{
		productID: {ID: productID, SKU: "SKU-1", Name: "Café", CurrentStock: 40, ReorderThreshold: 10},
	}}
	txRepo := &stubHistory{days: map[string][]repository.DailyStock{productID: history}}
	return forecast.NewCache(f, txRepo, products, opts, logger.Nop()), products
}

func defaultOpts() forecast.Options {
	return forecast.Options{TTL: time.Hour, MinHistoryDays: 30, Timeout: time.Second}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GetForecast
// ──────────────────────────────────────────────────────────────────────────────

func TestGetForecast_CacheaResultado(t *testing.T) {
	f := &stubForecaster{}
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	first, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)
	assert.Equal(t, productID, first.ProductID, "el cache estampa el product_id")
	assert.Equal(t, horizon, first.HorizonDays)
	assert.False(t, first.GeneratedAt.IsZero())

	second, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)
	assert.Same(t, first, second, "un resultado vigente se sirve sin recomputar")
	assert.Equal(t, 1, f.callCount())
}

func TestGetForecast_TTLVencido_Recomputa(t *testing.T) {
	f := &stubForecaster{}
	opts := defaultOpts()
	opts.TTL = 20 * time.Millisecond
	cache, _ := newTestCache(f, opts, historyDays(45, 40))
	ctx := context.Background()

	_, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount(), "vencido el TTL debe recomputarse")
}

func TestGetForecast_SinCache_FuerzaRecomputo(t *testing.T) {
	f := &stubForecaster{}
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	_, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)
	_, err = cache.GetForecast(ctx, productID, horizon, false)
	require.NoError(t, err)

	assert.Equal(t, 2, f.callCount(), "use_cache=false debe saltarse el resultado vigente")
}

func TestGetForecast_Invalidate_FuerzaRecomputo(t *testing.T) {
	f := &stubForecaster{}
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	_, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)

	cache.Invalidate(productID)
	assert.Nil(t, cache.Cached(productID, horizon), "la invalidación vacía el cache del producto")

	_, err = cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount())
}

// Caso: Invalidate corre mientras un cómputo está en vuelo. El resultado viejo
// se devuelve a quien lo esperaba pero no se escribe en el cache, y el próximo
// GetForecast recomputa con el historial fresco.
func TestGetForecast_InvalidateDuranteComputoEnVuelo(t *testing.T) {
	f := newGatedForecaster(1)
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	type outcome struct {
		result *entity.ForecastResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := cache.GetForecast(ctx, productID, horizon, true)
		done <- outcome{res, err}
	}()

	<-f.entered
	cache.Invalidate(productID)
	f.setRate(2)
	f.release <- struct{}{}

	first := <-done
	require.NoError(t, first.err)
	assert.InDelta(t, 1.0, first.result.DailyConsumptionRate, 1e-9,
		"quien esperaba el cómputo en vuelo recibe su resultado")
	assert.Nil(t, cache.Cached(productID, horizon),
		"un cómputo invalidado en vuelo no debe escribir el cache")

	go func() {
		res, err := cache.GetForecast(ctx, productID, horizon, true)
		done <- outcome{res, err}
	}()
	<-f.entered
	f.release <- struct{}{}

	second := <-done
	require.NoError(t, second.err)
	assert.InDelta(t, 2.0, second.result.DailyConsumptionRate, 1e-9,
		"tras la invalidación debe recomputarse con datos frescos")
	assert.Equal(t, 2, f.callCount())
}

// Caso: el primer llamador cancela su contexto a mitad del cómputo compartido.
// Los llamadores colapsados sobre ese cómputo no deben fallar por ello.
func TestGetForecast_CancelacionDelPrimeroNoTumbaAlResto(t *testing.T) {
	f := newGatedForecaster(1)
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))

	type outcome struct {
		result *entity.ForecastResult
		err    error
	}
	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()

	leaderDone := make(chan outcome, 1)
	go func() {
		res, err := cache.GetForecast(leaderCtx, productID, horizon, true)
		leaderDone <- outcome{res, err}
	}()
	<-f.entered

	waiterDone := make(chan outcome, 1)
	go func() {
		res, err := cache.GetForecast(context.Background(), productID, horizon, true)
		waiterDone <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond) // deja que el segundo se sume al vuelo

	cancelLeader()
	f.release <- struct{}{}

	waiter := <-waiterDone
	require.NoError(t, waiter.err,
		"la cancelación del primer llamador no debe fallar a los demás")
	assert.InDelta(t, 1.0, waiter.result.DailyConsumptionRate, 1e-9)

	<-leaderDone
	assert.Equal(t, 1, f.callCount(), "un solo cómputo compartido")
}

// Caso: diez llamadas concurrentes con cache frío → un solo cómputo compartido.
func TestGetForecast_SingleFlight(t *testing.T) {
	f := &stubForecaster{delay: 50 * time.Millisecond}
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetForecast(context.Background(), productID, horizon, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.callCount(),
		"las llamadas concurrentes deben colapsar en un solo cómputo")
}

func TestGetForecast_HistorialInsuficiente(t *testing.T) {
	f := &stubForecaster{}
	cache, _ := newTestCache(f, defaultOpts(), historyDays(10, 40))

	_, err := cache.GetForecast(context.Background(), productID, horizon, true)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
	assert.Equal(t, 0, f.callCount(), "sin historial suficiente no se invoca al forecaster")
}

func TestGetForecast_TimeoutDelForecaster(t *testing.T) {
	f := &stubForecaster{delay: 200 * time.Millisecond}
	opts := defaultOpts()
	opts.Timeout = 20 * time.Millisecond
	cache, _ := newTestCache(f, opts, historyDays(45, 40))

	_, err := cache.GetForecast(context.Background(), productID, horizon, true)
	assert.ErrorIs(t, err, domain.ErrForecastTimeout)
}

func TestGetForecast_FallaDejaCachePrevio(t *testing.T) {
	f := &stubForecaster{}
	cache, _ := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	first, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)

	f.err = fmt.Errorf("modelo caído")
	_, err = cache.GetForecast(ctx, productID, horizon, false)
	assert.ErrorIs(t, err, domain.ErrForecastUnavailable)

	assert.Same(t, first, cache.Cached(productID, horizon),
		"un cómputo fallido no debe desalojar el resultado previo")
}

func TestGetForecast_ProductoInexistente(t *testing.T) {
	cache, _ := newTestCache(&stubForecaster{}, defaultOpts(), nil)
	_, err := cache.GetForecast(context.Background(), "no-existe", horizon, true)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetForecast_HorizonteInvalido(t *testing.T) {
	cache, _ := newTestCache(&stubForecaster{}, defaultOpts(), historyDays(45, 40))
	_, err := cache.GetForecast(context.Background(), productID, 0, true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests del hook StockAdjusted
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAdjusted_MovimientoSignificativoInvalida(t *testing.T) {
	f := &stubForecaster{}
	cache, products := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	_, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)

	// Cruce de umbral: de sufficient (40) a low (8).
	cache.StockAdjusted(ctx, products.byID[productID], &entity.InventoryTransaction{
		ProductID:     productID,
		Quantity:      -32,
		PreviousStock: 40,
		NewStock:      8,
	})
	assert.Nil(t, cache.Cached(productID, horizon))
}

func TestStockAdjusted_MovimientoRutinarioMantieneCache(t *testing.T) {
	f := &stubForecaster{}
	cache, products := newTestCache(f, defaultOpts(), historyDays(45, 40))
	ctx := context.Background()

	_, err := cache.GetForecast(ctx, productID, horizon, true)
	require.NoError(t, err)

	// Venta pequeña sin cambio de estado: 40 → 38.
	cache.StockAdjusted(ctx, products.byID[productID], &entity.InventoryTransaction{
		ProductID:     productID,
		Quantity:      -2,
		PreviousStock: 40,
		NewStock:      38,
	})
	assert.NotNil(t, cache.Cached(productID, horizon),
		"un movimiento rutinario no debe invalidar el cache")
}
