package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/alert"
	"github.com/tu-usuario/stockwatch-api/internal/application/forecast"
	"github.com/tu-usuario/stockwatch-api/internal/application/ledger"
	"github.com/tu-usuario/stockwatch-api/internal/application/scheduler"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC     *ledger.UseCase
	ForecastUC   *forecast.Cache
	AlertEngine  *alert.Engine
	Scheduler    *scheduler.Scheduler
	Products     repository.ProductRepository
	VendorPrices repository.VendorPriceRepository
	HorizonDays  int
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware(deps.JWTSecret))

	// Libro de inventario
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/adjustments", inventoryHandler.Adjust)
	invGroup.Post("/recount", inventoryHandler.Recount)
	invGroup.Get("/products/:id/history", inventoryHandler.History)
	invGroup.Get("/movements", inventoryHandler.Movements)

	// Pronósticos y proveedores por producto
	products := api.Group("/products")
	forecastHandler := NewForecastHandler(deps.ForecastUC, deps.HorizonDays)
	vendorHandler := NewVendorHandler(deps.Products, deps.VendorPrices)
	products.Get("/:id/forecast", forecastHandler.Get)
	products.Get("/:id/vendors", vendorHandler.Compare)

	// Alertas
	alerts := api.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertEngine)
	alerts.Get("/", alertHandler.List)
	alerts.Get("/:id", alertHandler.GetByID)
	alerts.Post("/:id/acknowledge", alertHandler.Acknowledge)
	alerts.Post("/:id/resolve", alertHandler.Resolve)

	// Trabajos de fondo bajo demanda
	jobs := api.Group("/jobs")
	jobsHandler := NewJobsHandler(deps.Scheduler)
	jobs.Post("/scan", jobsHandler.Scan)
	jobs.Post("/sweep", jobsHandler.Sweep)
	jobs.Post("/refresh-forecasts", jobsHandler.RefreshForecasts)
}
