package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Documents   DocumentsConfig `mapstructure:"documents"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	Storage     StorageConfig   `mapstructure:"storage"`
}

type DocumentsConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig names the extraction targets. Nothing here is hardcoded in
// the extractor; callers decide which economic keys and industries to track
// and whether bilateral trade value extraction runs at all.
type MetricsConfig struct {
	EconomicKeys []string `mapstructure:"economic_keys"`
	Industries   []string `mapstructure:"industries"`
	TradeValue   bool     `mapstructure:"trade_value"`
}

type ForecastConfig struct {
	SeqLength     int     `mapstructure:"seq_length"`
	HiddenSize    int     `mapstructure:"hidden_size"`
	Epochs        int     `mapstructure:"epochs"`
	BatchSize     int     `mapstructure:"batch_size"`
	LearningRate  float64 `mapstructure:"learning_rate"`
	TrainSplit    float64 `mapstructure:"train_split"`
	Seed          int64   `mapstructure:"seed"`
	Horizon       int     `mapstructure:"horizon"`
	StepUnit      string  `mapstructure:"step_unit"`      // "daily" or "monthly"
	RetrainPolicy string  `mapstructure:"retrain_policy"` // "always", "if_missing" or "never"
	QuarterlyMode bool    `mapstructure:"quarterly_mode"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

const (
	StepDaily   = "daily"
	StepMonthly = "monthly"

	RetrainAlways    = "always"
	RetrainIfMissing = "if_missing"
	RetrainNever     = "never"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the pipeline cannot run with. It is called
// by Load but exported so programmatically built configs get the same checks.
func (c *Config) Validate() error {
	switch c.Forecast.StepUnit {
	case StepDaily, StepMonthly:
	default:
		return fmt.Errorf("invalid forecast step unit %q: must be %q or %q",
			c.Forecast.StepUnit, StepDaily, StepMonthly)
	}

	switch c.Forecast.RetrainPolicy {
	case RetrainAlways, RetrainIfMissing, RetrainNever:
	default:
		return fmt.Errorf("invalid retrain policy %q: must be %q, %q or %q",
			c.Forecast.RetrainPolicy, RetrainAlways, RetrainIfMissing, RetrainNever)
	}

	if c.Forecast.SeqLength < 1 {
		return fmt.Errorf("forecast seq_length must be positive, got %d", c.Forecast.SeqLength)
	}
	if c.Forecast.Horizon < 1 {
		return fmt.Errorf("forecast horizon must be positive, got %d", c.Forecast.Horizon)
	}
	if c.Forecast.TrainSplit <= 0 || c.Forecast.TrainSplit > 1 {
		return fmt.Errorf("forecast train_split must be in (0, 1], got %f", c.Forecast.TrainSplit)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage data_dir must not be empty")
	}

	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Documents
	viper.SetDefault("documents.dir", "./reports")

	// Metrics
	viper.SetDefault("metrics.economic_keys", []string{"gdp_growth", "inflation", "fdi"})
	viper.SetDefault("metrics.industries", []string{"technology", "real estate", "energy", "tourism"})
	viper.SetDefault("metrics.trade_value", true)

	// Forecast
	viper.SetDefault("forecast.seq_length", 3)
	viper.SetDefault("forecast.hidden_size", 16)
	viper.SetDefault("forecast.epochs", 100)
	viper.SetDefault("forecast.batch_size", 8)
	viper.SetDefault("forecast.learning_rate", 0.01)
	viper.SetDefault("forecast.train_split", 0.8)
	viper.SetDefault("forecast.seed", 42)
	viper.SetDefault("forecast.horizon", 3)
	viper.SetDefault("forecast.step_unit", StepMonthly)
	viper.SetDefault("forecast.retrain_policy", RetrainAlways)
	viper.SetDefault("forecast.quarterly_mode", false)

	// Storage
	viper.SetDefault("storage.data_dir", "./data")
}
