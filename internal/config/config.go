// Package config provides configuration management for the backtester.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"volarb/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Strategy StrategyConfig `mapstructure:"strategy"`
	Data     DataConfig     `mapstructure:"data"`
	Range    RangeConfig    `mapstructure:"range"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StrategyConfig holds the pricing-and-decision parameters.
type StrategyConfig struct {
	Mode          string  `mapstructure:"mode"`            // "historical", "implied"
	RiskFreeRate  float64 `mapstructure:"risk_free_rate"`  // annual, decimal
	Spread        float64 `mapstructure:"spread"`          // bid/ask width as a volatility offset
	LongMax       int     `mapstructure:"long_max"`        // per-side long position cap
	ShortMax      int     `mapstructure:"short_max"`       // per-side short position cap
	DeltaHedging  bool    `mapstructure:"delta_hedging"`   // enable the rebalancing overlay
	HedgeWindow   int     `mapstructure:"hedge_window"`    // simulated days per month
	MinExpiryYrs  float64 `mapstructure:"min_expiry_years"`
}

// DataConfig holds data source configuration.
type DataConfig struct {
	Symbol    string `mapstructure:"symbol"`
	ChainDir  string `mapstructure:"chain_dir"`  // normalized quote CSVs, <dir>/<year>/<month>.csv
	CachePath string `mapstructure:"cache_path"` // SQLite candle cache, empty disables
	Synthetic bool   `mapstructure:"synthetic"`  // use the GBM provider instead of cached candles
	Seed      int64  `mapstructure:"seed"`       // synthetic provider seed
}

// RangeConfig holds the (year, month) range to simulate.
type RangeConfig struct {
	StartYear  int `mapstructure:"start_year"`
	StartMonth int `mapstructure:"start_month"`
	EndYear    int `mapstructure:"end_year"`
	EndMonth   int `mapstructure:"end_month"`
	Workers    int `mapstructure:"workers"` // parallel month simulations, 1 = sequential
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/volarb"
	}
	return filepath.Join(home, ".config", "volarb")
}

// Default returns the built-in configuration, matching the parameters
// the strategy was tuned with.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Mode:         "implied",
			RiskFreeRate: 0.0242,
			Spread:       0.2,
			LongMax:      20,
			ShortMax:     10,
			DeltaHedging: true,
			HedgeWindow:  32,
			MinExpiryYrs: 0.0028,
		},
		Data: DataConfig{
			Symbol:   "BTC/USDT",
			ChainDir: "datasets/formatted",
		},
		Range: RangeConfig{
			StartYear:  2019,
			StartMonth: 4,
			EndYear:    2023,
			EndMonth:   12,
			Workers:    1,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// First run: drop a template and carry on with defaults.
		_ = writeTemplateConfig(configDir)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("strategy.mode", cfg.Strategy.Mode)
	v.SetDefault("strategy.risk_free_rate", cfg.Strategy.RiskFreeRate)
	v.SetDefault("strategy.spread", cfg.Strategy.Spread)
	v.SetDefault("strategy.long_max", cfg.Strategy.LongMax)
	v.SetDefault("strategy.short_max", cfg.Strategy.ShortMax)
	v.SetDefault("strategy.delta_hedging", cfg.Strategy.DeltaHedging)
	v.SetDefault("strategy.hedge_window", cfg.Strategy.HedgeWindow)
	v.SetDefault("strategy.min_expiry_years", cfg.Strategy.MinExpiryYrs)
	v.SetDefault("data.symbol", cfg.Data.Symbol)
	v.SetDefault("data.chain_dir", cfg.Data.ChainDir)
	v.SetDefault("range.start_year", cfg.Range.StartYear)
	v.SetDefault("range.start_month", cfg.Range.StartMonth)
	v.SetDefault("range.end_year", cfg.Range.EndYear)
	v.SetDefault("range.end_month", cfg.Range.EndMonth)
	v.SetDefault("range.workers", cfg.Range.Workers)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOLARB_CHAIN_DIR"); v != "" {
		cfg.Data.ChainDir = v
	}
	if v := os.Getenv("VOLARB_SYMBOL"); v != "" {
		cfg.Data.Symbol = v
	}
	if v := os.Getenv("VOLARB_CACHE_PATH"); v != "" {
		cfg.Data.CachePath = v
	}
	if v := os.Getenv("VOLARB_RISK_FREE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Strategy.RiskFreeRate = f
		}
	}
	if v := os.Getenv("VOLARB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Strategy.Mode != "historical" && c.Strategy.Mode != "implied" {
		return errors.NewValidationError("strategy.mode", c.Strategy.Mode, "must be \"historical\" or \"implied\"")
	}
	if c.Strategy.Spread < 0 {
		return errors.NewValidationError("strategy.spread", c.Strategy.Spread, "must be non-negative")
	}
	if c.Strategy.LongMax < 0 || c.Strategy.ShortMax < 0 {
		return errors.NewValidationError("strategy.position_caps", fmt.Sprintf("%d/%d", c.Strategy.LongMax, c.Strategy.ShortMax), "caps must be non-negative")
	}
	if c.Strategy.HedgeWindow <= 0 {
		return errors.NewValidationError("strategy.hedge_window", c.Strategy.HedgeWindow, "must be positive")
	}
	if c.Range.StartMonth < 1 || c.Range.StartMonth > 12 || c.Range.EndMonth < 1 || c.Range.EndMonth > 12 {
		return errors.NewValidationError("range", fmt.Sprintf("%d..%d", c.Range.StartMonth, c.Range.EndMonth), "months must be in 1..12")
	}
	if c.Range.EndYear < c.Range.StartYear ||
		(c.Range.EndYear == c.Range.StartYear && c.Range.EndMonth < c.Range.StartMonth) {
		return errors.NewValidationError("range", fmt.Sprintf("%d-%02d..%d-%02d",
			c.Range.StartYear, c.Range.StartMonth, c.Range.EndYear, c.Range.EndMonth), "end before start")
	}
	if c.Data.Symbol == "" {
		return errors.NewValidationError("data.symbol", c.Data.Symbol, "symbol is required")
	}
	return nil
}
