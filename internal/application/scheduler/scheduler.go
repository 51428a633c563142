package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tu-usuario/stockwatch-api/internal/domain"
	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/pkg/logger"
)

const (
	refreshPageSize    = 200
	refreshConcurrency = 4 // productos en vuelo contra el forecaster
)

// ForecastRefresher refresca el pronóstico de un producto (useCache=false
// fuerza la recomputación).
type ForecastRefresher interface {
	GetForecast(ctx context.Context, productID string, horizonDays int, useCache bool) (*entity.ForecastResult, error)
}

// AlertScanner corre el escaneo de alertas y el barrido de auto-resolución.
type AlertScanner interface {
	ScanAll(ctx context.Context) error
	Sweep(ctx context.Context) (int, error)
}

// Options cadencias y horizonte de los trabajos de fondo.
type Options struct {
	ScanInterval    time.Duration // escaneo de alertas (ej. cada hora)
	RefreshInterval time.Duration // refresco de pronósticos (ej. semanal)
	SweepInterval   time.Duration // auto-resolución (ej. cada 6 horas)
	HorizonDays     int
}

// Scheduler dispara periódicamente el refresco de pronósticos, el escaneo de
// alertas y el barrido de auto-resolución. Los tres trabajos son idempotentes
// y la falla de un producto nunca aborta el lote.
type Scheduler struct {
	products  repository.ProductRepository
	refresher ForecastRefresher
	scanner   AlertScanner
	opts      Options
	log       *logger.Logger
}

// New construye el scheduler.
func New(
	products repository.ProductRepository,
	refresher ForecastRefresher,
	scanner AlertScanner,
	opts Options,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		products:  products,
		refresher: refresher,
		scanner:   scanner,
		opts:      opts,
		log:       log,
	}
}

// Run bloquea hasta que el contexto se cancele, disparando cada trabajo en su
// cadencia. Al arrancar corre un escaneo inicial para no esperar el primer tick.
func (s *Scheduler) Run(ctx context.Context) {
	scanTicker := time.NewTicker(s.opts.ScanInterval)
	refreshTicker := time.NewTicker(s.opts.RefreshInterval)
	sweepTicker := time.NewTicker(s.opts.SweepInterval)
	defer scanTicker.Stop()
	defer refreshTicker.Stop()
	defer sweepTicker.Stop()

	s.log.Info().
		Dur("scan_interval", s.opts.ScanInterval).
		Dur("refresh_interval", s.opts.RefreshInterval).
		Dur("sweep_interval", s.opts.SweepInterval).
		Msg("scheduler iniciado")

	// El escaneo inicial puebla el cache de pronósticos tras un reinicio.
	s.runScan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler detenido")
			return
		case <-refreshTicker.C:
			s.runRefresh(ctx)
		case <-scanTicker.C:
			s.runScan(ctx)
		case <-sweepTicker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if err := s.RefreshForecasts(ctx); err != nil {
		s.log.Error().Err(err).Msg("refresco de pronósticos con fallas")
	}
}

func (s *Scheduler) runScan(ctx context.Context) {
	if err := s.scanner.ScanAll(ctx); err != nil {
		s.log.Error().Err(err).Msg("escaneo de alertas con fallas")
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.scanner.Sweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("barrido de auto-resolución con fallas")
	}
}

// RefreshForecasts fuerza la recomputación del pronóstico de cada producto
// (useCache=false), con a lo sumo refreshConcurrency productos en vuelo.
// Los errores por producto se acumulan y se reportan juntos; el historial
// insuficiente de productos nuevos no cuenta como falla.
func (s *Scheduler) RefreshForecasts(ctx context.Context) error {
	var (
		mu      sync.Mutex
		errs    []error
		ok, bad int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for offset := 0; ; offset += refreshPageSize {
		products, err := s.products.List(ctx, refreshPageSize, offset)
		if err != nil {
			_ = g.Wait()
			return err
		}
		if len(products) == 0 {
			break
		}
		for _, product := range products {
			id := product.ID
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return nil
				}
				_, err := s.refresher.GetForecast(gctx, id, s.opts.HorizonDays, false)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrInsufficientHistory):
					s.log.Debug().Str("product_id", id).Msg("sin historial suficiente, se omite")
				default:
					bad++
					s.log.Warn().Err(err).Str("product_id", id).Msg("refresco de pronóstico falló")
					errs = append(errs, fmt.Errorf("producto %s: %w", id, err))
				}
				// Nunca se devuelve el error: un producto caído no cancela el grupo.
				return nil
			})
		}
		if len(products) < refreshPageSize {
			break
		}
	}

	_ = g.Wait()
	s.log.Info().Int("refreshed", ok).Int("failed", bad).Msg("refresco de pronósticos completado")
	return errors.Join(errs...)
}

// TriggerRefresh, TriggerScan y TriggerSweep exponen los trabajos para
// disparo bajo demanda desde la API.
func (s *Scheduler) TriggerRefresh(ctx context.Context) error { return s.RefreshForecasts(ctx) }
func (s *Scheduler) TriggerScan(ctx context.Context) error    { return s.scanner.ScanAll(ctx) }
func (s *Scheduler) TriggerSweep(ctx context.Context) (int, error) {
	return s.scanner.Sweep(ctx)
}
