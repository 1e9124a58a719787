package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"volarb/internal/models"
)

// CandleCache is a SQLite-backed PriceProvider that caches candles
// fetched from an inner provider, so repeated grid runs over the same
// months do not refetch the same series.
type CandleCache struct {
	db    *sql.DB
	inner PriceProvider
}

// NewCandleCache opens (or creates) the cache database at dbPath and
// wraps inner.
func NewCandleCache(dbPath string, inner PriceProvider) (*CandleCache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	cache := &CandleCache{db: db, inner: inner}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return cache, nil
}

func (c *CandleCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);
	CREATE INDEX IF NOT EXISTS idx_candles_lookup
		ON candles(symbol, timeframe, timestamp);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (c *CandleCache) Close() error {
	return c.db.Close()
}

// GetCandles implements PriceProvider. Cache hits are served from
// SQLite; misses fall through to the inner provider and the result is
// stored before being returned.
func (c *CandleCache) GetCandles(ctx context.Context, symbol, timeframe string, limit int, start time.Time) ([]models.Candle, error) {
	cached, err := c.load(ctx, symbol, timeframe, limit, start)
	if err == nil && len(cached) >= limit {
		return cached, nil
	}

	if c.inner == nil {
		if err != nil {
			return nil, err
		}
		return cached, nil
	}

	fresh, err := c.inner.GetCandles(ctx, symbol, timeframe, limit, start)
	if err != nil {
		return nil, err
	}
	if err := c.save(ctx, symbol, timeframe, fresh); err != nil {
		return nil, fmt.Errorf("caching candles: %w", err)
	}
	return fresh, nil
}

func (c *CandleCache) load(ctx context.Context, symbol, timeframe string, limit int, start time.Time) ([]models.Candle, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ?
		ORDER BY timestamp ASC
		LIMIT ?`,
		symbol, timeframe, start.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var cd models.Candle
		if err := rows.Scan(&cd.Timestamp, &cd.Open, &cd.High, &cd.Low, &cd.Close, &cd.Volume); err != nil {
			return nil, fmt.Errorf("scanning candle: %w", err)
		}
		candles = append(candles, cd)
	}
	return candles, rows.Err()
}

func (c *CandleCache) save(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, cd := range candles {
		_, err := stmt.ExecContext(ctx, symbol, timeframe, cd.Timestamp.UTC(),
			cd.Open, cd.High, cd.Low, cd.Close, cd.Volume)
		if err != nil {
			return fmt.Errorf("inserting candle: %w", err)
		}
	}

	return tx.Commit()
}
