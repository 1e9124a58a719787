package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"volarb/internal/errors"
	"volarb/internal/models"
)

// CSVChainProvider reads normalized monthly quote tables from
// <dir>/<year>/<month>.csv. The files carry the Deribit chain-dump
// column set; any columns beyond the ones named below are ignored.
type CSVChainProvider struct {
	dir string
}

// NewCSVChainProvider creates a chain provider rooted at dir.
func NewCSVChainProvider(dir string) *CSVChainProvider {
	return &CSVChainProvider{dir: dir}
}

// Column names in the normalized chain tables.
const (
	colTimestamp = "timestamp"
	colStrike    = "strike_price"
	colExpiry    = "expiration"
	colType      = "type"
	colDelta     = "delta"
	colBid       = "bid_price"
	colAsk       = "ask_price"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// GetMonthQuotes implements ChainProvider. Rows come back in file
// order, which is the original quote-timestamp order.
func (p *CSVChainProvider) GetMonthQuotes(ctx context.Context, year int, month time.Month) ([]models.QuoteRecord, error) {
	period := fmt.Sprintf("%d-%02d", year, int(month))
	path := filepath.Join(p.dir, strconv.Itoa(year), fmt.Sprintf("%02d.csv", int(month)))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("quotes", path, period, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, errors.NewDataError("quotes", path, period, errors.Wrap(err, "reading header"))
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colTimestamp, colStrike, colExpiry, colType, colDelta, colBid, colAsk} {
		if _, ok := idx[required]; !ok {
			return nil, errors.NewDataError("quotes", path, period,
				fmt.Errorf("missing column %q", required))
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewDataError("quotes", path, period, err)
	}

	quotes := make([]models.QuoteRecord, 0, len(records))
	for line, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, err := parseQuoteRow(rec, idx)
		if err != nil {
			return nil, errors.NewDataError("quotes", path, period,
				errors.Wrapf(err, "row %d", line+2))
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func parseQuoteRow(rec []string, idx map[string]int) (models.QuoteRecord, error) {
	var q models.QuoteRecord

	ts, err := parseTimestamp(rec[idx[colTimestamp]])
	if err != nil {
		return q, errors.Wrap(err, "timestamp")
	}
	exp, err := parseTimestamp(rec[idx[colExpiry]])
	if err != nil {
		return q, errors.Wrap(err, "expiration")
	}
	strike, err := strconv.ParseFloat(rec[idx[colStrike]], 64)
	if err != nil {
		return q, errors.Wrap(err, "strike")
	}
	optType, err := models.ParseOptionType(rec[idx[colType]])
	if err != nil {
		return q, errors.Wrap(errors.ErrInvalidOptionType, rec[idx[colType]])
	}
	delta, err := strconv.ParseFloat(rec[idx[colDelta]], 64)
	if err != nil {
		return q, errors.Wrap(err, "delta")
	}

	q = models.QuoteRecord{
		Timestamp:    ts,
		Strike:       strike,
		Expiration:   exp,
		Type:         optType,
		Delta:        delta,
		BidPriceFrac: parsePriceFrac(rec[idx[colBid]]),
		AskPriceFrac: parsePriceFrac(rec[idx[colAsk]]),
	}
	return q, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parsePriceFrac parses a bid/ask fraction. Empty cells and
// unparseable values become NaN, which the decision engine treats as
// an unquoted side and skips.
func parsePriceFrac(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
