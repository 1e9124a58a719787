package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"volarb/internal/backtest"
	"volarb/internal/errors"
	"volarb/internal/logging"
	"volarb/internal/models"
)

func newMonthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month <year> <month>",
		Short: "Simulate a single month and show its settled book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			year, month, err := parseYearMonth(args[0], args[1])
			if err != nil {
				return err
			}

			applyStrategyFlags(cmd, app)
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

			res, err := engine.RunMonth(cmd.Context(), year, time.Month(month))
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			renderMonthDetail(output, res)
			return nil
		},
	}

	addStrategyFlags(cmd)
	return cmd
}

// renderMonthDetail prints the settled book for a single month.
func renderMonthDetail(output *Output, res *models.MonthlyResult) {
	output.Bold("%d-%02d Settled Book", res.Year, res.Month)
	output.Printf("  Historical Vol:  %.4f\n", res.HistVol)
	output.Printf("  Option P&L:      %s\n", output.FormatPnL(res.OptionProfit))
	output.Printf("  Hedge P&L:       %s\n", output.FormatPnL(res.DeltaProfit))
	output.Printf("  Net P&L:         %s\n", output.FormatPnL(res.Profit))
	output.Printf("  Winners/Losers:  %d/%d\n", len(res.Winners), len(res.Losers))

	if len(res.VolByExpiry) > 0 {
		output.Println()
		output.Bold("Volatility by Expiry")
		table := NewTable(output, "Day", "Estimate", "Quotes")
		for _, ev := range res.VolByExpiry {
			table.AddRow(
				strconv.Itoa(ev.ExpiryDay),
				fmt.Sprintf("%.4f", ev.Estimate),
				strconv.Itoa(ev.Observations),
			)
		}
		table.Render()
	}

	if res.TradeCount() == 0 {
		output.Info("No trades this month.")
		return
	}
	renderTrades(output, "Winners", res.Winners)
	renderTrades(output, "Losers", res.Losers)
}

// renderTrades prints one side of the settled book. The Net column is
// the trade's option P&L combined with its hedge cash.
func renderTrades(output *Output, title string, trades []models.Trade) {
	if len(trades) == 0 {
		return
	}
	output.Println()
	output.Bold(title)
	table := NewTable(output, "Side", "Type", "Strike", "ExpDay", "Premium", "MktIV%", "ModelVol", "Option", "Net")
	for _, t := range trades {
		table.AddRow(
			string(t.Side),
			string(t.Type),
			fmt.Sprintf("%.0f", t.Strike),
			strconv.Itoa(t.ExpiryDay),
			fmt.Sprintf("%.2f", t.Premium),
			fmt.Sprintf("%.1f", t.MarketIV),
			fmt.Sprintf("%.4f", t.ModelVol),
			output.FormatPnL(t.Profit),
			output.FormatPnL(t.NetProfit()),
		)
	}
	table.Render()
}

func parseYearMonth(yearArg, monthArg string) (int, int, error) {
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return 0, 0, err
	}
	month, err := strconv.Atoi(monthArg)
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, errors.NewValidationError("month", month, "must be between 1 and 12")
	}
	return year, month, nil
}
