package forecaster_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
	"github.com/tu-usuario/stockwatch-api/internal/infrastructure/forecaster"
)

// steadyHistory genera n días de consumo constante de perDay unidades,
// terminando con closing unidades en stock.
func steadyHistory(n, perDay, closing int) []repository.DailyStock {
	today := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]repository.DailyStock, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, repository.DailyStock{
			Date:         today.AddDate(0, 0, -i),
			ClosingStock: closing + i*perDay,
			NetChange:    -perDay,
		})
	}
	return out
}

func TestForecast_ConsumoConstante(t *testing.T) {
	l := forecaster.NewLinear()
	history := steadyHistory(60, 2, 30)

	f, err := l.Forecast(context.Background(), history, 30)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, f.DailyConsumptionRate, 0.01,
		"con consumo constante de 2/día la tasa estimada debe ser 2")

	require.NotNil(t, f.DepletionDate, "con stock 30 y tasa 2 debe predecirse agotamiento")
	expected := history[len(history)-1].Date.AddDate(0, 0, 15)
	assert.Equal(t, expected, *f.DepletionDate, "30 unidades / 2 por día = 15 días")

	assert.Greater(t, f.ConfidenceScore, 0.5, "consumo perfectamente estable da confianza alta")
	assert.LessOrEqual(t, f.ConfidenceScore, 0.95)
}

func TestForecast_SinConsumoNoPredeAgotamiento(t *testing.T) {
	l := forecaster.NewLinear()
	today := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	history := make([]repository.DailyStock, 0, 40)
	for i := 39; i >= 0; i-- {
		history = append(history, repository.DailyStock{
			Date:         today.AddDate(0, 0, -i),
			ClosingStock: 100,
			NetChange:    0,
		})
	}

	f, err := l.Forecast(context.Background(), history, 30)
	require.NoError(t, err)
	assert.Nil(t, f.DepletionDate, "sin salidas no hay agotamiento proyectado")
	assert.Zero(t, f.DailyConsumptionRate)
}

func TestForecast_StockCeroSinFecha(t *testing.T) {
	l := forecaster.NewLinear()
	history := steadyHistory(45, 3, 0)

	f, err := l.Forecast(context.Background(), history, 30)
	require.NoError(t, err)
	assert.Nil(t, f.DepletionDate, "un producto ya agotado no proyecta fecha futura")
	assert.InDelta(t, 3.0, f.DailyConsumptionRate, 0.01)
}

func TestForecast_RellenaDiasSinMovimiento(t *testing.T) {
	l := forecaster.NewLinear()
	today := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Movimientos cada 5 días: los huecos se arrastran con cambio neto cero.
	history := []repository.DailyStock{
		{Date: today.AddDate(0, 0, -40), ClosingStock: 100, NetChange: -10},
		{Date: today.AddDate(0, 0, -30), ClosingStock: 90, NetChange: -10},
		{Date: today.AddDate(0, 0, -20), ClosingStock: 80, NetChange: -10},
		{Date: today.AddDate(0, 0, -10), ClosingStock: 70, NetChange: -10},
		{Date: today, ClosingStock: 60, NetChange: -10},
	}

	f, err := l.Forecast(context.Background(), history, 30)
	require.NoError(t, err)

	// 50 unidades en 41 días de calendario ≈ 1.22/día, no 10/día.
	assert.Less(t, f.DailyConsumptionRate, 2.0,
		"la tasa se promedia sobre días de calendario, no sobre días con movimiento")
	assert.Greater(t, f.DailyConsumptionRate, 1.0)
}

func TestForecast_SerieCompleta(t *testing.T) {
	l := forecaster.NewLinear()
	f, err := l.Forecast(context.Background(), steadyHistory(60, 2, 30), 14)
	require.NoError(t, err)

	require.Len(t, f.Series, 14)
	last := f.Series[len(f.Series)-1]
	assert.GreaterOrEqual(t, last.PredictedStock, 0.0, "el stock proyectado nunca es negativo")
	for _, p := range f.Series {
		assert.LessOrEqual(t, p.LowerBound, p.PredictedStock)
		assert.GreaterOrEqual(t, p.UpperBound, p.PredictedStock)
	}
	assert.Equal(t, f.Series[0].Date.AddDate(0, 0, 13), last.Date)
}

func TestForecast_HistorialVacio(t *testing.T) {
	l := forecaster.NewLinear()
	_, err := l.Forecast(context.Background(), nil, 30)
	assert.Error(t, err)
}

func TestForecast_ContextoCancelado(t *testing.T) {
	l := forecaster.NewLinear()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Forecast(ctx, steadyHistory(60, 2, 30), 30)
	assert.ErrorIs(t, err, context.Canceled)
}
