package trend

import (
	"github.com/cinar/indicator/v2/helper"
	cinartrend "github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"

	"github.com/marketlens/insight-engine/internal/models"
)

// quarterlyWindow is the trailing point count averaged for the "current"
// level in quarterly mode. Series shorter than the window average whole.
const quarterlyWindow = 90

// Change compares a current level against a forecast level.
//
// change_percent is (forecasted - current) / current * 100, computed with
// decimal arithmetic, and is exactly 0 when current is 0 so a flat or empty
// baseline never divides by zero. The direction is "up" only when
// change_percent is strictly greater than zero; an exact zero change
// classifies "down". That strict comparison is the documented contract.
func Change(current, forecasted float64) models.TrendRecord {
	record := models.TrendRecord{
		Current:    current,
		Forecasted: forecasted,
		Trend:      models.TrendDown,
	}
	if current == 0 {
		return record
	}

	cur := decimal.NewFromFloat(current)
	fc := decimal.NewFromFloat(forecasted)
	change := fc.Sub(cur).Div(cur).Mul(decimal.NewFromInt(100))

	record.ChangePercent, _ = change.Float64()
	if change.GreaterThan(decimal.Zero) {
		record.Trend = models.TrendUp
	}
	return record
}

// Project builds the trend record for a series and its forecast.
//
// Default mode compares the last observed value against the first forecast
// step. Quarterly mode compares the trailing-90 average of the series
// against the mean of the whole forecast horizon.
func Project(values []float64, forecast []models.ForecastPoint, quarterly bool) models.TrendRecord {
	if len(values) == 0 || len(forecast) == 0 {
		return models.TrendRecord{Trend: models.TrendDown}
	}

	if quarterly {
		return Change(QuarterlyCurrent(values), HorizonMean(forecast))
	}
	return Change(values[len(values)-1], forecast[0].Value)
}

// QuarterlyCurrent averages the trailing 90 observations, or the whole
// series when shorter, via a simple moving average.
func QuarterlyCurrent(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	period := quarterlyWindow
	if len(values) < period {
		period = len(values)
	}

	sma := cinartrend.NewSmaWithPeriod[float64](period)
	smoothed := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	if len(smoothed) == 0 {
		return values[len(values)-1]
	}
	return smoothed[len(smoothed)-1]
}

// HorizonMean averages a forecast horizon.
func HorizonMean(forecast []models.ForecastPoint) float64 {
	if len(forecast) == 0 {
		return 0
	}
	var sum float64
	for _, p := range forecast {
		sum += p.Value
	}
	return sum / float64(len(forecast))
}
