package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketlens/insight-engine/internal/models"
)

func TestChange(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		forecasted float64
		wantChange float64
		wantTrend  string
	}{
		{
			name:       "increase",
			current:    100,
			forecasted: 110,
			wantChange: 10,
			wantTrend:  models.TrendUp,
		},
		{
			name:       "decrease",
			current:    100,
			forecasted: 95,
			wantChange: -5,
			wantTrend:  models.TrendDown,
		},
		{
			name:       "zero current short-circuits to zero change",
			current:    0,
			forecasted: 50,
			wantChange: 0,
			wantTrend:  models.TrendDown,
		},
		{
			name:       "exact zero change classifies down",
			current:    3.4,
			forecasted: 3.4,
			wantChange: 0,
			wantTrend:  models.TrendDown,
		},
		{
			name:       "negative baseline",
			current:    -2.0,
			forecasted: -1.0,
			wantChange: -50,
			wantTrend:  models.TrendDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Change(tt.current, tt.forecasted)
			assert.Equal(t, tt.current, got.Current)
			assert.Equal(t, tt.forecasted, got.Forecasted)
			assert.InDelta(t, tt.wantChange, got.ChangePercent, 1e-9)
			assert.Equal(t, tt.wantTrend, got.Trend)
		})
	}
}

func TestChangeZeroCurrentRegardlessOfForecast(t *testing.T) {
	for _, forecasted := range []float64{-10, 0, 0.0001, 1e9} {
		got := Change(0, forecasted)
		assert.Zero(t, got.ChangePercent)
	}
}

func forecastPoints(values ...float64) []models.ForecastPoint {
	points := make([]models.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = models.ForecastPoint{Value: v}
	}
	return points
}

func TestProjectDefaultMode(t *testing.T) {
	got := Project([]float64{3.3, 3.4, 3.5}, forecastPoints(3.85), false)
	assert.Equal(t, 3.5, got.Current)
	assert.Equal(t, 3.85, got.Forecasted)
	assert.InDelta(t, 10, got.ChangePercent, 1e-9)
	assert.Equal(t, models.TrendUp, got.Trend)
}

func TestProjectQuarterlyMode(t *testing.T) {
	// Series shorter than 90 points averages whole.
	got := Project([]float64{1, 2, 3}, forecastPoints(3, 5), true)
	assert.InDelta(t, 2, got.Current, 1e-9)
	assert.InDelta(t, 4, got.Forecasted, 1e-9)
	assert.Equal(t, models.TrendUp, got.Trend)
}

func TestProjectEmptyInputs(t *testing.T) {
	assert.Equal(t, models.TrendDown, Project(nil, forecastPoints(1), false).Trend)
	assert.Equal(t, models.TrendDown, Project([]float64{1}, nil, false).Trend)
}

func TestQuarterlyCurrent(t *testing.T) {
	assert.InDelta(t, 2, QuarterlyCurrent([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, QuarterlyCurrent(nil))

	// Longer than the trailing window: only the last 90 points count.
	values := make([]float64, 120)
	for i := range values {
		values[i] = float64(i)
	}
	// Mean of indices 30..119 is 74.5.
	assert.InDelta(t, 74.5, QuarterlyCurrent(values), 1e-9)
}

func TestHorizonMean(t *testing.T) {
	assert.InDelta(t, 4, HorizonMean(forecastPoints(3, 5)), 1e-9)
	assert.Zero(t, HorizonMean(nil))
}
