package extract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/insight-engine/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testTargets() Targets {
	return Targets{
		EconomicLabels: DefaultEconomicLabels(),
		Industries:     []string{"technology", "real estate"},
		TradeValue:     true,
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "report_20250301_120000.md", "March report")
	writeFile(t, dir, "report_20250101_120000.md", "January report")
	writeFile(t, dir, "report_20250201_120000.md", "February report")
	// Malformed timestamps are skipped, not fatal.
	writeFile(t, dir, "report_20251399_120000.md", "bad month")
	writeFile(t, dir, "notes.md", "no token at all")

	e := NewExtractor(testTargets(), testLogger())
	docs, err := e.LoadCorpus(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Sorted ascending by publication date.
	assert.Equal(t, "20250101_120000", docs[0].ID)
	assert.Equal(t, "20250201_120000", docs[1].ID)
	assert.Equal(t, "20250301_120000", docs[2].ID)

	// Date-only precision after parsing.
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), docs[0].Date)
}

func TestLoadCorpusMissingDir(t *testing.T) {
	e := NewExtractor(testTargets(), testLogger())
	_, err := e.LoadCorpus(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestExtractDocument(t *testing.T) {
	content := `# UAE Business Intelligence Report

## Economic Indicators
GDP Growth: 3.4%
Inflation: 2.1%
Foreign Direct Investment: 23%

### Technology
The technology sector has increased by 8.5% in the last quarter.

### Real Estate
Transactions declined by 2.0% compared to last month.

## Trade
Bilateral trade between the US and UAE reached $40.5 billion.
`
	doc := models.Document{
		ID:      "20250101_120000",
		Date:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Content: content,
	}

	e := NewExtractor(testTargets(), testLogger())
	points := e.ExtractDocument(doc)

	byKey := make(map[string]float64)
	for _, p := range points {
		byKey[p.MetricKey] = p.Value
		assert.Equal(t, doc.Date, p.Date)
	}

	assert.InDelta(t, 3.4, byKey["gdp_growth"], 1e-9)
	assert.InDelta(t, 2.1, byKey["inflation"], 1e-9)
	assert.InDelta(t, 23, byKey["fdi"], 1e-9)
	assert.InDelta(t, 8.5, byKey["industry_technology"], 1e-9)
	assert.InDelta(t, -2.0, byKey["industry_real_estate"], 1e-9)
	assert.InDelta(t, 40.5, byKey["bilateral_trade"], 1e-9)
}

func TestExtractDocumentMetricFreeText(t *testing.T) {
	doc := models.Document{
		ID:      "20250101_120000",
		Date:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Content: "Nothing quantitative here. !!! ### garbled ]] 12345abc",
	}

	e := NewExtractor(testTargets(), testLogger())
	assert.Empty(t, e.ExtractDocument(doc))
}

func TestExtractCorpusIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "report_20250101_120000.md", "GDP Growth: 3.3%")
	writeFile(t, dir, "report_20250201_120000.md", "GDP Growth: 3.4%")

	e := NewExtractor(testTargets(), testLogger())

	docs1, err := e.LoadCorpus(dir)
	require.NoError(t, err)
	docs2, err := e.LoadCorpus(dir)
	require.NoError(t, err)

	assert.Equal(t, e.ExtractCorpus(docs1), e.ExtractCorpus(docs2))
}

func TestExtractDisabledTradeValue(t *testing.T) {
	targets := testTargets()
	targets.TradeValue = false
	e := NewExtractor(targets, testLogger())

	doc := models.Document{
		ID:      "20250101_120000",
		Date:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Content: "Bilateral trade between the US and UAE reached $40.5 billion.",
	}
	assert.Empty(t, e.ExtractDocument(doc))
}
