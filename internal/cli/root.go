package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"volarb/internal/config"
	"volarb/internal/data"
	"volarb/internal/logging"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "volarb",
		Short: "Volarb - crypto option volatility arbitrage backtester",
		Long: `Volarb simulates a volatility arbitrage strategy on historical crypto
option chains: it estimates volatility, quotes every option with a
Black-Scholes model, takes the profitable side when the market crosses
the model, delta hedges the book daily and settles it at expiry.

Use 'volarb run' to simulate the full configured range, or
'volarb month <year> <month>' to inspect a single month.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/volarb)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newMonthCmd(app))
	rootCmd.AddCommand(newVolCmd(app))

	return rootCmd
}

// providers wires the price and chain data sources from configuration.
// The returned closer releases the candle cache when one is open.
func (app *App) providers() (data.PriceProvider, data.ChainProvider, func(), error) {
	var prices data.PriceProvider = data.NewSyntheticProvider(app.Config.Data.Seed)
	closer := func() {}

	if !app.Config.Data.Synthetic && app.Config.Data.CachePath != "" {
		cache, err := data.NewCandleCache(app.Config.Data.CachePath, prices)
		if err != nil {
			return nil, nil, nil, err
		}
		prices = cache
		closer = func() { cache.Close() }
		app.Logger.Debug().Str("path", app.Config.Data.CachePath).Msg("Candle cache opened")
	}

	chain := data.NewCSVChainProvider(app.Config.Data.ChainDir)
	return prices, chain, closer, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Volarb v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Strategy Configuration")
	output.Printf("  Mode:            %s\n", cfg.Strategy.Mode)
	output.Printf("  Risk-Free Rate:  %.4f\n", cfg.Strategy.RiskFreeRate)
	output.Printf("  Spread:          %.2f\n", cfg.Strategy.Spread)
	output.Printf("  Long Max:        %d\n", cfg.Strategy.LongMax)
	output.Printf("  Short Max:       %d\n", cfg.Strategy.ShortMax)
	output.Printf("  Delta Hedging:   %v\n", cfg.Strategy.DeltaHedging)
	output.Printf("  Hedge Window:    %d days\n", cfg.Strategy.HedgeWindow)
	output.Println()

	output.Bold("Data Configuration")
	output.Printf("  Symbol:          %s\n", cfg.Data.Symbol)
	output.Printf("  Chain Dir:       %s\n", cfg.Data.ChainDir)
	output.Printf("  Cache Path:      %s\n", cfg.Data.CachePath)
	output.Printf("  Synthetic:       %v\n", cfg.Data.Synthetic)
	output.Println()

	output.Bold("Range Configuration")
	output.Printf("  Start:           %d-%02d\n", cfg.Range.StartYear, cfg.Range.StartMonth)
	output.Printf("  End:             %d-%02d\n", cfg.Range.EndYear, cfg.Range.EndMonth)
	output.Printf("  Workers:         %d\n", cfg.Range.Workers)

	return nil
}
