package usecase

import (
	"context"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	mid "FinCast/internal/middleware"
)

// CandleCollector collects candles from the market stream and processes them.
type CandleCollector struct {
	stream  drepo.MarketStream
	proc    *CandleProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewCandleCollector creates a new CandleCollector instance.
func NewCandleCollector(stream drepo.MarketStream, proc *CandleProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *CandleCollector {
	return &CandleCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *CandleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CandleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	cnCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, cnCh, errCh)
	return nil
}

func (c *CandleCollector) consume(ctx context.Context, cnCh <-chan *models.Candle, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case cn := <-cnCh:
			if cn == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, cn)
			} else {
				_ = c.proc.Process(ctx, cn)
			}
			c.metrics.RecordLastClose(cn.Symbol, cn.Close)
		}
	}
}

func (c *CandleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying CandleProcessor for lifecycle management.
func (c *CandleCollector) Processor() *CandleProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
