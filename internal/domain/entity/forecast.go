package entity

import "time"

// ForecastPoint es un punto de la serie proyectada.
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedStock float64   `json:"predicted_stock"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
}

// ForecastResult es el pronóstico de agotamiento de un producto. Se reemplaza
// completo en cada refresco, nunca se muta en sitio; la vigencia la controla
// el cache por GeneratedAt + TTL.
type ForecastResult struct {
	ProductID            string          `json:"product_id"`
	GeneratedAt          time.Time       `json:"generated_at"`
	DailyConsumptionRate float64         `json:"daily_consumption_rate"` // unidades/día, >= 0
	DepletionDate        *time.Time      `json:"predicted_depletion_date,omitempty"`
	ConfidenceScore      float64         `json:"confidence_score"` // 0..1
	HorizonDays          int             `json:"forecast_horizon_days"`
	Series               []ForecastPoint `json:"series"`
}

// DaysUntilDepletion devuelve los días hasta el agotamiento proyectado
// contados desde now, o false si el pronóstico no predice agotamiento.
func (f *ForecastResult) DaysUntilDepletion(now time.Time) (int, bool) {
	if f.DepletionDate == nil {
		return 0, false
	}
	days := int(f.DepletionDate.Sub(now).Hours() / 24)
	return days, true
}
