package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Volarb Configuration

[strategy]
# Volatility model: "historical" (constant warmup estimate) or
# "implied" (per-expiry running mean of market implied vols)
mode = "implied"
# Annual risk-free rate, decimal
risk_free_rate = 0.0242
# Quoted bid/ask width as a volatility offset
spread = 0.2
# Per-side position caps
long_max = 20
short_max = 10
# Daily delta-neutral rebalancing
delta_hedging = true
# Simulated rebalancing days per month
hedge_window = 32
# Quotes closer to expiry than this (in years) are skipped
min_expiry_years = 0.0028

[data]
symbol = "BTC/USDT"
# Normalized chain tables, <chain_dir>/<year>/<month>.csv
chain_dir = "datasets/formatted"
# SQLite candle cache; empty disables caching
cache_path = ""
# Generate candles instead of reading the cache
synthetic = false
seed = 0

[range]
start_year = 2019
start_month = 4
end_year = 2023
end_month = 12
# Parallel month simulations, 1 = sequential
workers = 1

[logging]
# debug, info, warn, error
level = "info"
# Also log to ~/.config/volarb/logs/volarb.log
file = true
`

// writeTemplateConfig drops a commented config.toml into configDir so
// a first run leaves something to edit. The caller keeps going on the
// built-in defaults either way.
func writeTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
