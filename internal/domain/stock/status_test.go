package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/stockwatch-api/internal/domain/stock"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		current   int
		threshold int
		want      stock.Status
	}{
		{"stock en cero siempre es crítico", 0, 20, stock.StatusCritical},
		{"stock igual al umbral es bajo", 20, 20, stock.StatusLow},
		{"stock bajo el umbral es bajo", 15, 20, stock.StatusLow},
		{"stock sobre el umbral es suficiente", 25, 20, stock.StatusSufficient},
		{"una unidad con umbral uno es bajo", 1, 1, stock.StatusLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stock.Evaluate(tc.current, tc.threshold))
		})
	}
}

// Con umbral 0 nunca hay estado "low": cero es crítico y cualquier
// existencia es suficiente.
func TestEvaluate_UmbralCero(t *testing.T) {
	assert.Equal(t, stock.StatusCritical, stock.Evaluate(0, 0))
	assert.Equal(t, stock.StatusSufficient, stock.Evaluate(1, 0))
}
