package config

import (
	"os"
	"path/filepath"
	"testing"

	"volarb/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultParameters(t *testing.T) {
	cfg := Default()
	if cfg.Strategy.RiskFreeRate != 0.0242 {
		t.Errorf("risk-free rate = %v, want 0.0242", cfg.Strategy.RiskFreeRate)
	}
	if cfg.Strategy.Spread != 0.2 {
		t.Errorf("spread = %v, want 0.2", cfg.Strategy.Spread)
	}
	if cfg.Strategy.LongMax != 20 || cfg.Strategy.ShortMax != 10 {
		t.Errorf("caps = %d/%d, want 20/10", cfg.Strategy.LongMax, cfg.Strategy.ShortMax)
	}
	if cfg.Data.Symbol != "BTC/USDT" {
		t.Errorf("symbol = %q, want BTC/USDT", cfg.Data.Symbol)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Strategy.Mode = "gamma" }},
		{"negative spread", func(c *Config) { c.Strategy.Spread = -0.1 }},
		{"negative cap", func(c *Config) { c.Strategy.LongMax = -1 }},
		{"zero hedge window", func(c *Config) { c.Strategy.HedgeWindow = 0 }},
		{"bad month", func(c *Config) { c.Range.StartMonth = 13 }},
		{"inverted range", func(c *Config) { c.Range.EndYear = c.Range.StartYear - 1 }},
		{"empty symbol", func(c *Config) { c.Data.Symbol = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var vErr *errors.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("missing config file should yield defaults")
	}
}

func TestLoadReadsTOML(t *testing.T) {
	dir := t.TempDir()
	toml := `
[strategy]
mode = "historical"
spread = 0.3

[range]
workers = 4
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Strategy.Mode != "historical" {
		t.Errorf("mode = %q, want historical", cfg.Strategy.Mode)
	}
	if cfg.Strategy.Spread != 0.3 {
		t.Errorf("spread = %v, want 0.3", cfg.Strategy.Spread)
	}
	if cfg.Range.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Range.Workers)
	}
	// Untouched fields keep their defaults.
	if cfg.Strategy.RiskFreeRate != 0.0242 {
		t.Errorf("risk-free rate = %v, want default", cfg.Strategy.RiskFreeRate)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOLARB_SYMBOL", "ETH/USDT")
	t.Setenv("VOLARB_RISK_FREE_RATE", "0.05")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Data.Symbol != "ETH/USDT" {
		t.Errorf("symbol = %q, want ETH/USDT", cfg.Data.Symbol)
	}
	if cfg.Strategy.RiskFreeRate != 0.05 {
		t.Errorf("risk-free rate = %v, want 0.05", cfg.Strategy.RiskFreeRate)
	}
}
