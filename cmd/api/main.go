package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/stockwatch-api/internal/application/alert"
	"github.com/tu-usuario/stockwatch-api/internal/application/forecast"
	"github.com/tu-usuario/stockwatch-api/internal/application/ledger"
	"github.com/tu-usuario/stockwatch-api/internal/application/scheduler"
	"github.com/tu-usuario/stockwatch-api/internal/infrastructure/forecaster"
	"github.com/tu-usuario/stockwatch-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/stockwatch-api/internal/interfaces/http"
	"github.com/tu-usuario/stockwatch-api/pkg/config"
	"github.com/tu-usuario/stockwatch-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración de esquema")
	}

	productRepo := postgres.NewProductRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)
	vendorPriceRepo := postgres.NewVendorPriceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := ledger.NewUseCase(txRunner, txRepo, productRepo, log)

	forecastCache := forecast.NewCache(
		forecaster.NewLinear(),
		txRepo, productRepo,
		forecast.Options{
			TTL:            cfg.Forecast.TTL(),
			MinHistoryDays: cfg.Forecast.MinHistoryDays,
			Timeout:        cfg.Forecast.Timeout(),
		},
		log,
	)

	alertEngine := alert.NewEngine(
		alertRepo, productRepo, forecastCache,
		alert.Options{
			ThresholdDays: cfg.Alert.ThresholdDays,
			CriticalDays:  cfg.Alert.CriticalDays,
			HorizonDays:   cfg.Forecast.HorizonDays,
		},
		log,
	)

	// Hooks post-commit del libro: invalidación de cache y re-evaluación
	// de alertas apenas se confirma un ajuste.
	ledgerUC.Subscribe(forecastCache)
	ledgerUC.Subscribe(alertEngine)

	sched := scheduler.New(
		productRepo, forecastCache, alertEngine,
		scheduler.Options{
			ScanInterval:    cfg.Scheduler.ScanInterval(),
			RefreshInterval: cfg.Scheduler.RefreshInterval(),
			SweepInterval:   cfg.Scheduler.SweepInterval(),
			HorizonDays:     cfg.Forecast.HorizonDays,
		},
		log,
	)

	schedCtx, stopSched := context.WithCancel(ctx)
	defer stopSched()
	go sched.Run(schedCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:     ledgerUC,
		ForecastUC:   forecastCache,
		AlertEngine:  alertEngine,
		Scheduler:    sched,
		Products:     productRepo,
		VendorPrices: vendorPriceRepo,
		HorizonDays:  cfg.Forecast.HorizonDays,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSched()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
