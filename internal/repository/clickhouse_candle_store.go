package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	pkgch "SignalForge/pkg/clickhouse"
	applogger "SignalForge/pkg/logger"
)

const candleTable = "signalforge.candles"

const candleSchema = `
CREATE TABLE IF NOT EXISTS signalforge.candles (
    symbol           LowCardinality(String),
    interval         LowCardinality(String),
    open_time        Int64,
    open             Float64,
    high             Float64,
    low              Float64,
    close            Float64,
    volume           Float64,
    close_time       Int64,
    quote_volume     Float64,
    trade_count      Int64,
    taker_buy_base   Float64,
    taker_buy_quote  Float64
)
ENGINE = ReplacingMergeTree
PARTITION BY toYYYYMM(toDateTime(open_time / 1000))
ORDER BY (symbol, interval, open_time)
`

const candleColumns = "symbol, interval, open_time, open, high, low, close, volume, close_time, quote_volume, trade_count, taker_buy_base, taker_buy_quote"

// CHCandleStore implements CandleStore backed by ClickHouse.
type CHCandleStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS signalforge"); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, candleSchema); err != nil {
		return fmt.Errorf("create candles table: %w", err)
	}
	return nil
}

func (s *CHCandleStore) Store(ctx context.Context, symbol string, interval domrepo.Interval, c *models.Candle) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", candleTable, candleColumns)
	_, err := s.db.ExecContext(ctx, q, candleArgs(symbol, interval, c)...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store candle error",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store candle: %w", err)
	}
	return nil
}

func (s *CHCandleStore) StoreBatch(ctx context.Context, symbol string, interval domrepo.Interval, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Multi-row VALUES chunks keep round-trips down on backfill.
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*13)
		for _, c := range candles[start:end] {
			if c == nil || c.OpenTime == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, candleArgs(symbol, interval, c)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", candleTable, candleColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse store batch error",
					applogger.String("symbol", symbol),
					applogger.String("interval", string(interval)),
					applogger.Int("rows", len(values)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("store batch: %w", err)
		}
	}
	return nil
}

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, interval domrepo.Interval, from, to time.Time, limit int) ([]models.Candle, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s FINAL
        WHERE symbol = ? AND interval = ? AND open_time >= ? AND open_time <= ?
        ORDER BY open_time ASC
        LIMIT ?
    `, candleColumns, candleTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(interval), from.UnixMilli(), to.UnixMilli(), limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_candles query error",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out, err := scanCandles(rows, 1024)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_candles scan error",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Error(err),
			)
		}
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse get_candles ok",
			applogger.String("symbol", symbol),
			applogger.String("interval", string(interval)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHCandleStore) GetLatestNCandles(ctx context.Context, symbol string, interval domrepo.Interval, n int) ([]models.Candle, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s FINAL
        WHERE symbol = ? AND interval = ?
        ORDER BY open_time DESC
        LIMIT ?
    `, candleColumns, candleTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(interval), n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_candles query error",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	tmp, err := scanCandles(rows, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_candles scan error",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, err
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_candles ok",
			applogger.String("symbol", symbol),
			applogger.String("interval", string(interval)),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHCandleStore) Close() error {
	return nil // connection owned by pkg/clickhouse
}

func candleArgs(symbol string, interval domrepo.Interval, c *models.Candle) []interface{} {
	return []interface{}{
		symbol,
		string(interval),
		c.OpenTime,
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
		c.CloseTime,
		c.QuoteVolume,
		c.TradeCount,
		c.TakerBuyBase,
		c.TakerBuyQuote,
	}
}

func scanCandles(rows *sql.Rows, capHint int) ([]models.Candle, error) {
	out := make([]models.Candle, 0, capHint)
	for rows.Next() {
		var c models.Candle
		var symbol, interval string
		if err := rows.Scan(&symbol, &interval, &c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close,
			&c.Volume, &c.CloseTime, &c.QuoteVolume, &c.TradeCount, &c.TakerBuyBase, &c.TakerBuyQuote); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.CandleStore = (*CHCandleStore)(nil)
