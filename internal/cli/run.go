package cli

import (
	"github.com/spf13/cobra"

	"volarb/internal/backtest"
	"volarb/internal/logging"
	"volarb/internal/report"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the configured month range",
		Long: `Run the strategy over every month in the configured range and print
the year-by-month profit grid with summary statistics. Months whose
data cannot be loaded are skipped and marked in the grid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			applyStrategyFlags(cmd, app)
			if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
				app.Config.Range.Workers = workers
			}
			if err := app.Config.Validate(); err != nil {
				return err
			}

			prices, chain, closer, err := app.providers()
			if err != nil {
				return err
			}
			defer closer()

			logger := logging.WithSymbol(app.Logger, app.Config.Data.Symbol)
			engine := backtest.NewEngine(app.Config.Strategy, app.Config.Data.Symbol, prices, chain, logger)
			agg := backtest.NewAggregator(engine, app.Config.Range, logger)

			grid, err := agg.Run(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(grid)
			}
			report.ProfitGrid(output.Writer(), grid)
			report.Summary(output.Writer(), grid)
			if len(grid.Missing) > 0 {
				output.Warning("%d months skipped for missing data, marked '-' in the grid", len(grid.Missing))
			}
			return nil
		},
	}

	addStrategyFlags(cmd)
	cmd.Flags().Int("workers", 0, "parallel month simulations (default from config)")
	return cmd
}

// addStrategyFlags registers the shared strategy overrides.
func addStrategyFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "volatility model: historical or implied")
	cmd.Flags().Float64("spread", 0, "quoted bid/ask width as a volatility offset")
	cmd.Flags().Int("long-max", 0, "per-side long position cap")
	cmd.Flags().Int("short-max", 0, "per-side short position cap")
	cmd.Flags().Bool("no-hedge", false, "disable daily delta hedging")
}

// applyStrategyFlags folds explicitly set flags into the config.
func applyStrategyFlags(cmd *cobra.Command, app *App) {
	st := &app.Config.Strategy
	if cmd.Flags().Changed("mode") {
		st.Mode, _ = cmd.Flags().GetString("mode")
	}
	if cmd.Flags().Changed("spread") {
		st.Spread, _ = cmd.Flags().GetFloat64("spread")
	}
	if cmd.Flags().Changed("long-max") {
		st.LongMax, _ = cmd.Flags().GetInt("long-max")
	}
	if cmd.Flags().Changed("short-max") {
		st.ShortMax, _ = cmd.Flags().GetInt("short-max")
	}
	if noHedge, _ := cmd.Flags().GetBool("no-hedge"); noHedge {
		st.DeltaHedging = false
	}
}
