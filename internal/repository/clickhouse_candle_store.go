package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgcache "FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/util"
)

// candleCacheTTL bounds staleness of cached candle reads; freshly closed
// buckets become visible within this window.
const candleCacheTTL = 30 * time.Second

// CHCandleStore implements CandleStore backed by ClickHouse with an
// optional read-through cache in front of the query paths.
type CHCandleStore struct {
	db    *sql.DB
	l     *applogger.Logger
	cache pkgcache.Service
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetCache enables read-through caching of candle queries.
func (s *CHCandleStore) SetCache(c pkgcache.Service) { s.cache = c }

func (s *CHCandleStore) cachedCandles(ctx context.Context, key string) ([]models.Candle, bool) {
	if s.cache == nil {
		return nil, false
	}
	var out []models.Candle
	if err := s.cache.Get(ctx, key, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *CHCandleStore) storeCandles(ctx context.Context, key string, candles []models.Candle) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, candles, candleCacheTTL); err != nil && s.l != nil {
		s.l.Warn("candle cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	from, to = util.AlignFromTo(from, to, string(tf))
	key := pkgcache.GenerateKeyWithParams("candles:range", string(tf), symbol, from.Unix(), to.Unix())
	if hit, ok := s.cachedCandles(ctx, key); ok {
		return hit, nil
	}
	const qtpl = `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_candles query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 1024)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_candles scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_candles ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	s.storeCandles(ctx, key, out)
	return out, nil
}

func (s *CHCandleStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	key := pkgcache.GenerateKeyWithParams("candles:latest", string(tf), symbol, n)
	if hit, ok := s.cachedCandles(ctx, key); ok {
		return hit, nil
	}
	const qtpl = `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_candles query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_candles ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	s.storeCandles(ctx, key, tmp)
	return tmp, nil
}

func tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1m:
		return "fincast.candles_1m", nil
	case domrepo.TF5m:
		return "fincast.candles_5m", nil
	case domrepo.TF15m:
		return "fincast.candles_15m", nil
	case domrepo.TF1h:
		return "fincast.candles_1h", nil
	case domrepo.TF1d:
		return "fincast.candles_1d", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}
