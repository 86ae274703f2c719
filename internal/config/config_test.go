package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment: "test",
		LogLevel:    "info",
		Documents:   DocumentsConfig{Dir: "./reports"},
		Metrics: MetricsConfig{
			EconomicKeys: []string{"gdp_growth"},
			Industries:   []string{"technology"},
			TradeValue:   true,
		},
		Forecast: ForecastConfig{
			SeqLength:     3,
			HiddenSize:    16,
			Epochs:        100,
			BatchSize:     8,
			LearningRate:  0.01,
			TrainSplit:    0.8,
			Seed:          42,
			Horizon:       3,
			StepUnit:      StepMonthly,
			RetrainPolicy: RetrainAlways,
		},
		Storage: StorageConfig{DataDir: "./data"},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"gdp_growth", "inflation", "fdi"}, cfg.Metrics.EconomicKeys)
	assert.True(t, cfg.Metrics.TradeValue)
	assert.Equal(t, 3, cfg.Forecast.SeqLength)
	assert.Equal(t, StepMonthly, cfg.Forecast.StepUnit)
	assert.Equal(t, RetrainAlways, cfg.Forecast.RetrainPolicy)
	assert.Equal(t, int64(42), cfg.Forecast.Seed)
	assert.NotEmpty(t, cfg.Storage.DataDir)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad step unit", func(c *Config) { c.Forecast.StepUnit = "weekly" }},
		{"bad retrain policy", func(c *Config) { c.Forecast.RetrainPolicy = "sometimes" }},
		{"zero seq length", func(c *Config) { c.Forecast.SeqLength = 0 }},
		{"zero horizon", func(c *Config) { c.Forecast.Horizon = 0 }},
		{"train split too large", func(c *Config) { c.Forecast.TrainSplit = 1.5 }},
		{"train split zero", func(c *Config) { c.Forecast.TrainSplit = 0 }},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
