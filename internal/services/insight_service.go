package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marketlens/insight-engine/internal/config"
	"github.com/marketlens/insight-engine/internal/correlation"
	"github.com/marketlens/insight-engine/internal/extract"
	"github.com/marketlens/insight-engine/internal/forecast"
	"github.com/marketlens/insight-engine/internal/models"
	"github.com/marketlens/insight-engine/internal/series"
	"github.com/marketlens/insight-engine/internal/storage"
	"github.com/marketlens/insight-engine/internal/trend"
)

// InsightService runs the full pipeline for one report cycle: extraction,
// series assembly, per-metric forecasting, trend projection and correlation
// analysis. The pipeline is synchronous and single-threaded per invocation;
// concurrent invocations are safe only for disjoint model namespaces and
// data directories.
type InsightService struct {
	cfg       *config.Config
	extractor *extract.Extractor
	engine    *forecast.Engine
	store     *storage.ArtifactStore
	logger    *logrus.Logger
}

func NewInsightService(cfg *config.Config, store *storage.ArtifactStore, logger *logrus.Logger) *InsightService {
	labels := extract.DefaultEconomicLabels()
	targets := extract.Targets{
		EconomicLabels: make(map[string]string, len(cfg.Metrics.EconomicKeys)),
		Industries:     cfg.Metrics.Industries,
		TradeValue:     cfg.Metrics.TradeValue,
	}
	for _, key := range cfg.Metrics.EconomicKeys {
		normalized := extract.NormalizeMetricKey(key)
		label, ok := labels[normalized]
		if !ok {
			// Unknown economic keys match on their own name, titled the
			// way report headings write it.
			label = strings.ReplaceAll(normalized, "_", " ")
		}
		targets.EconomicLabels[normalized] = label
	}

	return &InsightService{
		cfg:       cfg,
		extractor: extract.NewExtractor(targets, logger),
		engine:    forecast.NewEngine(cfg.Forecast, store, logger),
		store:     store,
		logger:    logger,
	}
}

// GenerateInsight executes one pipeline run and persists the resulting
// insight record. The caller always receives a well-formed Insight: an
// empty or unreadable corpus produces a sparse one, never an error. Only
// persistence failures on the data directory surface as errors.
func (s *InsightService) GenerateInsight(ctx context.Context) (*models.Insight, error) {
	insight := &models.Insight{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Forecasts:   make(map[string][]models.ForecastPoint),
		Trends:      make(map[string]models.TrendRecord),
	}

	// A missing or unreadable corpus is "ran with no data", not a crash;
	// the caller still gets a well-formed empty insight.
	docs, err := s.extractor.LoadCorpus(s.cfg.Documents.Dir)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"dir": s.cfg.Documents.Dir,
		}).Warnf("Corpus unreadable, generating empty insight: %v", err)
		docs = nil
	}
	insight.Documents = len(docs)

	if len(docs) == 0 {
		s.logger.Warn("Empty corpus: insight will carry no forecasts")
		return s.persist(insight)
	}

	store := series.NewStore()
	store.AddAll(s.extractor.ExtractCorpus(docs))

	valuesByMetric := make(map[string][]float64)
	for _, key := range store.Keys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metricSeries := store.Get(key)
		valuesByMetric[key] = metricSeries.Values()

		points := s.engine.Forecast(metricSeries, s.modelName(key), s.cfg.Forecast.Horizon)
		if len(points) == 0 {
			continue
		}
		insight.Forecasts[key] = points
		insight.Trends[key] = trend.Project(metricSeries.Values(), points, s.cfg.Forecast.QuarterlyMode)
	}

	insight.Correlations = correlation.Matrix(valuesByMetric)

	return s.persist(insight)
}

func (s *InsightService) persist(insight *models.Insight) (*models.Insight, error) {
	path, err := s.store.SaveInsight(insight)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"insight":   insight.ID,
		"documents": insight.Documents,
		"forecasts": len(insight.Forecasts),
		"path":      path,
	}).Info("Insight generated")
	return insight, nil
}

// modelName derives the artifact name from the metric key family: economic
// keys gain an "economic_" prefix; industry and trade keys already carry
// their family in the key.
func (s *InsightService) modelName(metricKey string) string {
	if strings.HasPrefix(metricKey, "industry_") || metricKey == "bilateral_trade" {
		return metricKey
	}
	return "economic_" + metricKey
}
