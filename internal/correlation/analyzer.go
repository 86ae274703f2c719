package correlation

import (
	"math"
	"sort"

	"github.com/marketlens/insight-engine/internal/models"
)

// Matrix aligns the given metric value arrays to their minimum common
// length and computes the full pairwise Pearson correlation matrix.
//
// Alignment keeps the most recent tail of each array: series are not
// resampled by date, only length-truncated from the front. Fewer than two
// metrics with data, or a common length under two points, yields an empty
// matrix without error.
func Matrix(valuesByMetric map[string][]float64) models.CorrelationMatrix {
	metrics := make([]string, 0, len(valuesByMetric))
	minLen := math.MaxInt
	for key, values := range valuesByMetric {
		if len(values) == 0 {
			continue
		}
		metrics = append(metrics, key)
		if len(values) < minLen {
			minLen = len(values)
		}
	}
	if len(metrics) < 2 || minLen < 2 {
		return models.CorrelationMatrix{}
	}
	sort.Strings(metrics)

	aligned := make([][]float64, len(metrics))
	for i, key := range metrics {
		values := valuesByMetric[key]
		aligned[i] = values[len(values)-minLen:]
	}

	matrix := make([][]float64, len(metrics))
	for i := range metrics {
		matrix[i] = make([]float64, len(metrics))
		matrix[i][i] = 1
	}
	for i := 0; i < len(metrics); i++ {
		for j := i + 1; j < len(metrics); j++ {
			r := pearson(aligned[i], aligned[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	return models.CorrelationMatrix{
		Metrics: metrics,
		Values:  matrix,
	}
}

// pearson computes the Pearson correlation coefficient of two equal-length
// arrays. A zero-variance input correlates as 0.
func pearson(a, b []float64) float64 {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
