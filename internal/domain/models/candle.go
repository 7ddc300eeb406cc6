package models

import "time"

// Candle represents one OHLCV observation for a fixed interval.
// Sequences are ordered strictly by Bucket with no duplicate timestamps.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
