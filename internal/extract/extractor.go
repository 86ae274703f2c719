package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketlens/insight-engine/internal/models"
)

// timestampToken matches the YYYYMMDD_HHMMSS token embedded in report
// filenames, e.g. report_20250131_093000.md.
var timestampToken = regexp.MustCompile(`(\d{8}_\d{6})`)

const timestampLayout = "20060102_150405"

// Targets names what the extractor looks for. It is supplied by the caller;
// the extractor itself has no built-in metric list.
type Targets struct {
	// EconomicLabels maps a normalized metric key to the human label the
	// document uses, e.g. gdp_growth -> "GDP Growth".
	EconomicLabels map[string]string
	Industries     []string
	TradeValue     bool
}

// DefaultEconomicLabels returns the human document labels for the three
// standard economic keys.
func DefaultEconomicLabels() map[string]string {
	return map[string]string{
		"gdp_growth": "GDP Growth",
		"inflation":  "Inflation",
		"fdi":        "Foreign Direct Investment",
	}
}

// Extractor pulls observed metric points out of a corpus of dated report
// documents. Extraction never fails on malformed or metric-free text; a
// document simply contributes fewer (or zero) points.
type Extractor struct {
	targets Targets
	logger  *logrus.Logger
}

func NewExtractor(targets Targets, logger *logrus.Logger) *Extractor {
	return &Extractor{
		targets: targets,
		logger:  logger,
	}
}

// LoadCorpus reads every regular file in dir that carries a parseable
// timestamp token. Files with a malformed or missing token are skipped with
// a warning, never a failure. The corpus is returned sorted by publication
// date then filename, which fixes the iteration order that same-date
// collision handling depends on.
func (e *Extractor) LoadCorpus(dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory %s: %w", dir, err)
	}

	type namedDoc struct {
		name string
		doc  models.Document
	}
	var docs []namedDoc

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		token := timestampToken.FindString(name)
		if token == "" {
			e.logger.WithFields(logrus.Fields{
				"file": name,
			}).Warn("Skipping document without timestamp token")
			continue
		}
		ts, err := time.Parse(timestampLayout, token)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"file":  name,
				"token": token,
			}).Warn("Skipping document with malformed timestamp")
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"file": name,
			}).Warnf("Skipping unreadable document: %v", err)
			continue
		}

		docs = append(docs, namedDoc{
			name: name,
			doc: models.Document{
				ID:      token,
				Date:    time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
				Content: string(content),
			},
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].doc.Date.Equal(docs[j].doc.Date) {
			return docs[i].doc.Date.Before(docs[j].doc.Date)
		}
		return docs[i].name < docs[j].name
	})

	out := make([]models.Document, len(docs))
	for i, d := range docs {
		out[i] = d.doc
	}
	return out, nil
}

// ExtractDocument returns every observed point one document yields across
// all configured targets. Zero points is a normal outcome.
func (e *Extractor) ExtractDocument(doc models.Document) []models.ObservedPoint {
	var points []models.ObservedPoint

	for _, target := range e.economicTargets() {
		rule := NewAbsoluteLabelRule(target.label)
		if v, ok := rule.Apply(doc.Content); ok {
			points = append(points, models.ObservedPoint{
				MetricKey: target.key,
				Date:      doc.Date,
				Value:     v,
			})
		}
	}

	industryRules := IndustryRules()
	for _, industry := range e.targets.Industries {
		section := SectionFor(doc.Content, industry)
		if section == "" {
			continue
		}
		if v, ok := ApplyFirst(industryRules, section); ok {
			points = append(points, models.ObservedPoint{
				MetricKey: "industry_" + NormalizeMetricKey(industry),
				Date:      doc.Date,
				Value:     v,
			})
		}
	}

	if e.targets.TradeValue {
		if v, ok := ApplyFirst(TradeValueRules(), doc.Content); ok {
			points = append(points, models.ObservedPoint{
				MetricKey: "bilateral_trade",
				Date:      doc.Date,
				Value:     v,
			})
		}
	}

	return points
}

// ExtractCorpus runs ExtractDocument over the whole corpus in order.
func (e *Extractor) ExtractCorpus(docs []models.Document) []models.ObservedPoint {
	var points []models.ObservedPoint
	for _, doc := range docs {
		docPoints := e.ExtractDocument(doc)
		if len(docPoints) == 0 {
			e.logger.WithFields(logrus.Fields{
				"document": doc.ID,
			}).Debug("Document yielded no metric observations")
		}
		points = append(points, docPoints...)
	}

	e.logger.WithFields(logrus.Fields{
		"documents": len(docs),
		"points":    len(points),
	}).Info("Corpus extraction complete")

	return points
}

type economicTarget struct {
	key   string
	label string
}

// economicTargets returns the configured economic metrics in deterministic
// key order so repeated runs extract in the same sequence.
func (e *Extractor) economicTargets() []economicTarget {
	keys := make([]string, 0, len(e.targets.EconomicLabels))
	for key := range e.targets.EconomicLabels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	targets := make([]economicTarget, len(keys))
	for i, key := range keys {
		targets[i] = economicTarget{key: NormalizeMetricKey(key), label: e.targets.EconomicLabels[key]}
	}
	return targets
}
