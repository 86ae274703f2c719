package models

import (
	"time"
)

// TrendUp and TrendDown are the two directional classifications produced by
// the trend calculator. A change of exactly zero classifies as TrendDown
// under the strict greater-than comparison; that tie-break is part of the
// contract and must not be changed silently.
const (
	TrendUp   = "up"
	TrendDown = "down"
)

// Document is one ingested report document. The ID is the raw timestamp
// token from the filename (e.g. "20250131_093000"); Date carries date-only
// precision. Documents are immutable once ingested.
type Document struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Content string    `json:"-"`
}

// ObservedPoint is a single extracted observation for one metric.
type ObservedPoint struct {
	MetricKey string    `json:"metric_key"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
}

// Series is the chronologically ordered history of one metric. Points are
// sorted by ascending date and contain at most one point per date.
type Series struct {
	MetricKey string          `json:"metric_key"`
	Points    []ObservedPoint `json:"points"`
}

// Len returns the number of points in the series.
func (s *Series) Len() int {
	return len(s.Points)
}

// Values returns the observation values in chronological order.
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// LastDate returns the date of the most recent observation and false when
// the series is empty.
func (s *Series) LastDate() (time.Time, bool) {
	if len(s.Points) == 0 {
		return time.Time{}, false
	}
	return s.Points[len(s.Points)-1].Date, true
}

// ForecastPoint is one projected value beyond the last observed date.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendRecord compares the current level of a metric against its forecast.
type TrendRecord struct {
	Current       float64 `json:"current"`
	Forecasted    float64 `json:"forecasted"`
	ChangePercent float64 `json:"change_percent"`
	Trend         string  `json:"trend"`
}

// CorrelationMatrix is a pairwise Pearson correlation matrix over the
// metrics that had sufficient aligned data. Values[i][j] correlates
// Metrics[i] against Metrics[j].
type CorrelationMatrix struct {
	Metrics []string    `json:"metrics"`
	Values  [][]float64 `json:"values"`
}

// Empty reports whether the matrix carries no metrics.
func (m CorrelationMatrix) Empty() bool {
	return len(m.Metrics) == 0
}

// Insight is the aggregate output of one pipeline run: per-metric forecast
// continuations, per-metric trend records and the cross-metric correlation
// matrix. It is an immutable snapshot; a sparse Insight (empty maps) is the
// well-formed result of running against an empty corpus.
type Insight struct {
	ID           string                     `json:"id"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Documents    int                        `json:"documents"`
	Forecasts    map[string][]ForecastPoint `json:"forecasts"`
	Trends       map[string]TrendRecord     `json:"trends"`
	Correlations CorrelationMatrix          `json:"correlations"`
}
