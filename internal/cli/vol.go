package cli

import (
	"time"

	"github.com/spf13/cobra"

	"volarb/internal/analysis"
)

func newVolCmd(app *App) *cobra.Command {
	var bars int
	cmd := &cobra.Command{
		Use:   "vol <year> <month>",
		Short: "Estimate annualized historical volatility for a month's warmup window",
		Long: `Estimate the annualized historical volatility from the daily closes
leading into the given month. This is the same warmup estimate the
simulation seeds its pricing model with.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			year, month, err := parseYearMonth(args[0], args[1])
			if err != nil {
				return err
			}

			prices, _, closer, err := app.providers()
			if err != nil {
				return err
			}
			defer closer()

			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
			candles, err := prices.GetCandles(cmd.Context(), app.Config.Data.Symbol, "1d", bars, start)
			if err != nil {
				return err
			}
			vol, err := analysis.AnnualizedVolatility(candles)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     app.Config.Data.Symbol,
					"year":       year,
					"month":      month,
					"bars":       len(candles),
					"annualized": vol,
				})
			}
			output.Bold("Historical Volatility")
			output.Printf("  Symbol:     %s\n", app.Config.Data.Symbol)
			output.Printf("  Window:     %d daily bars from %s\n", len(candles), start.Format("2006-01-02"))
			output.Printf("  Annualized: %.4f (%.1f%%)\n", vol, vol*100)
			return nil
		},
	}

	cmd.Flags().IntVar(&bars, "bars", 30, "daily bars in the warmup window")
	return cmd
}
