package series

import (
	"sort"

	"github.com/marketlens/insight-engine/internal/models"
)

// Store accumulates observed points over one corpus pass and hands back
// chronologically ordered series per metric key. A store is rebuilt from
// scratch on every extraction run; it is never mutated incrementally across
// runs.
//
// Same-date collisions resolve last-write-wins in insertion order. Because
// the extractor feeds points in (publication date, filename) corpus order,
// the resolution is deterministic rather than an accident of directory
// traversal.
type Store struct {
	points map[string][]models.ObservedPoint
}

func NewStore() *Store {
	return &Store{
		points: make(map[string][]models.ObservedPoint),
	}
}

// Add records one observation for a metric.
func (s *Store) Add(point models.ObservedPoint) {
	s.points[point.MetricKey] = append(s.points[point.MetricKey], point)
}

// AddAll records a batch of observations in order.
func (s *Store) AddAll(points []models.ObservedPoint) {
	for _, p := range points {
		s.Add(p)
	}
}

// Has reports whether any observation exists for the metric.
func (s *Store) Has(metricKey string) bool {
	return len(s.points[metricKey]) > 0
}

// Len returns the deduplicated series length for the metric.
func (s *Store) Len(metricKey string) int {
	return len(s.Get(metricKey).Points)
}

// Keys returns every metric key with observations, sorted for deterministic
// iteration.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.points))
	for key := range s.points {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get assembles the series for a metric: sorted by ascending date, with at
// most one point per date. The stable sort preserves insertion order among
// equal dates, so keeping the last of each run implements last-write-wins.
func (s *Store) Get(metricKey string) *models.Series {
	raw := s.points[metricKey]
	sorted := make([]models.ObservedPoint, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	deduped := make([]models.ObservedPoint, 0, len(sorted))
	for i, p := range sorted {
		if i+1 < len(sorted) && sorted[i+1].Date.Equal(p.Date) {
			continue
		}
		deduped = append(deduped, p)
	}

	return &models.Series{
		MetricKey: metricKey,
		Points:    deduped,
	}
}

// Values returns the chronologically ordered values for a metric.
func (s *Store) Values(metricKey string) []float64 {
	return s.Get(metricKey).Values()
}
