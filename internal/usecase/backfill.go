package usecase

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
)

// CandleSource fetches historical candles page by page, oldest first.
type CandleSource interface {
	HistoricalCandles(ctx context.Context, symbol string, tf domrepo.Timeframe, from, to time.Time, limit int) ([]*models.Candle, error)
}

// Backfiller pulls historical candles from a REST source and writes them
// into candle storage. Re-running a range is safe because the candle
// tables deduplicate on (symbol, bucket).
type Backfiller struct {
	src      CandleSource
	store    domrepo.Storage
	l        *applogger.Logger
	pageSize int
}

func NewBackfiller(src CandleSource, store domrepo.Storage, l *applogger.Logger) *Backfiller {
	return &Backfiller{src: src, store: store, l: l, pageSize: 500}
}

// SetPageSize overrides the per-request candle limit.
func (b *Backfiller) SetPageSize(n int) {
	if n > 0 {
		b.pageSize = n
	}
}

// Run backfills [from, to] for every symbol and returns the number of
// candles stored.
func (b *Backfiller) Run(ctx context.Context, symbols []string, tf domrepo.Timeframe, from, to time.Time) (int, error) {
	if len(symbols) == 0 {
		return 0, fmt.Errorf("no symbols to backfill")
	}
	if !from.Before(to) {
		return 0, fmt.Errorf("backfill range is empty: from %s to %s", from, to)
	}

	total := 0
	for _, symbol := range symbols {
		n, err := b.backfillSymbol(ctx, symbol, tf, from, to)
		total += n
		if err != nil {
			return total, fmt.Errorf("backfill %s: %w", symbol, err)
		}
		if b.l != nil {
			b.l.Info("backfill done",
				applogger.String("symbol", symbol),
				applogger.String("timeframe", string(tf)),
				applogger.Int("candles", n),
			)
		}
	}
	return total, nil
}

func (b *Backfiller) backfillSymbol(ctx context.Context, symbol string, tf domrepo.Timeframe, from, to time.Time) (int, error) {
	stored := 0
	cursor := from
	for cursor.Before(to) {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		candles, err := b.src.HistoricalCandles(ctx, symbol, tf, cursor, to, b.pageSize)
		if err != nil {
			return stored, err
		}
		if len(candles) == 0 {
			break
		}
		if err := b.store.StoreBatch(ctx, candles); err != nil {
			return stored, fmt.Errorf("store batch: %w", err)
		}
		stored += len(candles)

		next := candles[len(candles)-1].Bucket.Add(tf.Duration())
		if !next.After(cursor) {
			// Source returned stale data, stop instead of spinning.
			break
		}
		cursor = next
	}
	return stored, nil
}
