package forecast

import (
	"context"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

// Forecaster es la capacidad externa de pronóstico. Recibe el historial
// diario de un producto y un horizonte, y devuelve la estimación de
// agotamiento. El modelo estadístico es intercambiable; este servicio solo
// alimenta, cachea y reacciona al resultado.
type Forecaster interface {
	Forecast(ctx context.Context, history []repository.DailyStock, horizonDays int) (*entity.ForecastResult, error)
}
