package dto

import (
	"time"

	"github.com/tu-usuario/stockwatch-api/internal/domain/entity"
)

// ForecastResponse pronóstico de agotamiento de un producto.
type ForecastResponse struct {
	ProductID            string             `json:"product_id"`
	GeneratedAt          time.Time          `json:"generated_at"`
	DailyConsumptionRate float64            `json:"daily_consumption_rate"`
	DepletionDate        *time.Time         `json:"predicted_depletion_date,omitempty"`
	ConfidenceScore      float64            `json:"confidence_score"`
	HorizonDays          int                `json:"forecast_horizon_days"`
	Series               []ForecastPointDTO `json:"series"`
}

// ForecastPointDTO punto de la serie proyectada.
type ForecastPointDTO struct {
	Date           time.Time `json:"date"`
	PredictedStock float64   `json:"predicted_stock"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
}

// NewForecastResponse mapea el pronóstico de dominio a la respuesta HTTP.
func NewForecastResponse(f *entity.ForecastResult) ForecastResponse {
	series := make([]ForecastPointDTO, 0, len(f.Series))
	for _, p := range f.Series {
		series = append(series, ForecastPointDTO{
			Date:           p.Date,
			PredictedStock: p.PredictedStock,
			LowerBound:     p.LowerBound,
			UpperBound:     p.UpperBound,
		})
	}
	return ForecastResponse{
		ProductID:            f.ProductID,
		GeneratedAt:          f.GeneratedAt,
		DailyConsumptionRate: f.DailyConsumptionRate,
		DepletionDate:        f.DepletionDate,
		ConfidenceScore:      f.ConfidenceScore,
		HorizonDays:          f.HorizonDays,
		Series:               series,
	}
}
