// Package report renders backtest results for the terminal.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"volarb/internal/backtest"
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ProfitGrid writes the year-by-month profit matrix. Months outside
// the simulated range are blank, months skipped for missing data show
// a dash.
func ProfitGrid(w io.Writer, grid *backtest.GridResult) {
	byKey := make(map[backtest.MonthKey]float64, len(grid.Months))
	years := make(map[int]bool)
	for _, m := range grid.Months {
		byKey[backtest.MonthKey{Year: m.Year, Month: m.Month}] = m.Profit
		years[m.Year] = true
	}
	missing := make(map[backtest.MonthKey]bool, len(grid.Missing))
	for _, k := range grid.Missing {
		missing[k] = true
		years[k.Year] = true
	}

	minYear, maxYear := 0, 0
	for y := range years {
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if minYear == 0 {
		fmt.Fprintln(w, "no months simulated")
		return
	}

	color.New(color.Bold).Fprintln(w, "Monthly Profit (USD)")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Year")
	for _, name := range monthNames {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprint(tw, "\tTotal\n")

	for y := minYear; y <= maxYear; y++ {
		fmt.Fprintf(tw, "%d", y)
		for m := 1; m <= 12; m++ {
			key := backtest.MonthKey{Year: y, Month: m}
			switch {
			case missing[key]:
				fmt.Fprint(tw, "\t-")
			default:
				p, ok := byKey[key]
				if !ok {
					fmt.Fprint(tw, "\t")
				} else {
					fmt.Fprintf(tw, "\t%s", pnl(p))
				}
			}
		}
		fmt.Fprintf(tw, "\t%s\n", pnl(grid.YearTotals[y]))
	}
	tw.Flush()
}

// Summary writes the aggregate statistics for a grid run.
func Summary(w io.Writer, grid *backtest.GridResult) {
	fmt.Fprintln(w)
	color.New(color.Bold).Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Months simulated: %d\n", len(grid.Months))
	if len(grid.Missing) > 0 {
		fmt.Fprintf(w, "  Months skipped:   %d\n", len(grid.Missing))
	}
	fmt.Fprintf(w, "  Total profit:     %s\n", pnl(grid.Total))
	fmt.Fprintf(w, "  Monthly mean:     %.2f\n", grid.Mean)
	fmt.Fprintf(w, "  Monthly std dev:  %.2f\n", grid.Std)
}

// pnl colors a profit figure by its sign.
func pnl(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	switch {
	case v > 0:
		return color.GreenString("+" + s)
	case v < 0:
		return color.RedString(s)
	default:
		return s
	}
}
