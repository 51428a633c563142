package forecaster

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
	"github.com/tu-usuario/stockwatch-api/internal/domain/repository"
)

const (
	// Ventana reciente sobre la que se estima el consumo diario.
	rateWindowDays = 90
	// Factor z para las bandas de la serie (aprox. 95%).
	zScore = 1.96
	// Por debajo de esta tasa se considera que no hay consumo.
	minRate = 1e-9
)

// Linear es el forecaster por defecto: modelo lineal de consumo. Estima la
// tasa diaria como el promedio de salidas netas de la ventana reciente y
// proyecta el agotamiento por extrapolación. Es deliberadamente simple: la
// interfaz admite reemplazarlo por un modelo estadístico real sin tocar el
// resto del pipeline.
type Linear struct{}

// NewLinear construye el forecaster lineal.
func NewLinear() *Linear {
	return &Linear{}
}

// Forecast implementa forecast.Forecaster sobre el historial diario agregado.
func (l *Linear) Forecast(ctx context.Context, history []repository.DailyStock, horizonDays int) (*entity.ForecastResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, errors.New("historial vacío")
	}

	filled := fillMissingDates(history)
	window := filled
	if len(window) > rateWindowDays {
		window = window[len(window)-rateWindowDays:]
	}

	rate, stddev := consumptionStats(window)
	current := float64(filled[len(filled)-1].ClosingStock)

	result := &entity.ForecastResult{
		DailyConsumptionRate: rate,
		ConfidenceScore:      confidence(rate, stddev, len(filled)),
		Series:               buildSeries(filled[len(filled)-1].Date, current, rate, stddev, horizonDays),
	}

	if rate > minRate && current > 0 {
		days := current / rate
		depletion := filled[len(filled)-1].Date.AddDate(0, 0, int(math.Ceil(days)))
		result.DepletionDate = &depletion
	}

	return result, nil
}

// fillMissingDates completa los días sin movimientos arrastrando el stock de
// cierre anterior con cambio neto cero.
func fillMissingDates(history []repository.DailyStock) []repository.DailyStock {
	if len(history) == 0 {
		return history
	}
	filled := make([]repository.DailyStock, 0, len(history))
	filled = append(filled, history[0])
	for _, day := range history[1:] {
		prev := filled[len(filled)-1]
		for d := prev.Date.AddDate(0, 0, 1); d.Before(day.Date); d = d.AddDate(0, 0, 1) {
			filled = append(filled, repository.DailyStock{
				Date:         d,
				ClosingStock: prev.ClosingStock,
				NetChange:    0,
			})
		}
		filled = append(filled, day)
	}
	return filled
}

// consumptionStats devuelve el promedio y la desviación estándar del consumo
// diario (solo las salidas netas cuentan como consumo).
func consumptionStats(window []repository.DailyStock) (mean, stddev float64) {
	if len(window) == 0 {
		return 0, 0
	}
	n := float64(len(window))
	var sum float64
	outflows := make([]float64, len(window))
	for i, day := range window {
		out := 0.0
		if day.NetChange < 0 {
			out = float64(-day.NetChange)
		}
		outflows[i] = out
		sum += out
	}
	mean = sum / n

	var variance float64
	for _, out := range outflows {
		d := out - mean
		variance += d * d
	}
	stddev = math.Sqrt(variance / n)
	return mean, stddev
}

// confidence combina la estabilidad del consumo (coeficiente de variación)
// con la cantidad de historial disponible. Resultado en [0.1, 0.95].
func confidence(rate, stddev float64, historyDays int) float64 {
	stability := 1.0
	if rate > minRate {
		stability = 1 / (1 + stddev/rate)
	}
	coverage := math.Min(1, float64(historyDays)/60)
	score := stability * (0.5 + 0.5*coverage)
	return math.Max(0.1, math.Min(0.95, score))
}

// buildSeries proyecta el stock día a día con bandas que se ensanchan con la
// raíz del tiempo proyectado.
func buildSeries(lastDate time.Time, current, rate, stddev float64, horizonDays int) []entity.ForecastPoint {
	series := make([]entity.ForecastPoint, 0, horizonDays)
	for d := 1; d <= horizonDays; d++ {
		predicted := math.Max(0, current-rate*float64(d))
		margin := zScore * stddev * math.Sqrt(float64(d))
		series = append(series, entity.ForecastPoint{
			Date:           lastDate.AddDate(0, 0, d),
			PredictedStock: predicted,
			LowerBound:     math.Max(0, predicted-margin),
			UpperBound:     predicted + margin,
		})
	}
	return series
}
