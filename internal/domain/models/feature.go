package models

import "time"

// Derived feature column names. The order here is the canonical feature schema:
// artifacts record it at train time and inference must match it exactly.
const (
	FeatSMA20       = "sma_20"
	FeatSMA50       = "sma_50"
	FeatRSI         = "rsi"
	FeatMACD        = "macd"
	FeatMACDSignal  = "macd_signal"
	FeatMACDHist    = "macd_hist"
	FeatBBUpper     = "bb_upper"
	FeatBBMiddle    = "bb_middle"
	FeatBBLower     = "bb_lower"
	FeatBBPosition  = "bb_position"
	FeatVolumeRatio = "volume_ratio"
	FeatHLRatio     = "hl_ratio"
	FeatCORatio     = "co_ratio"
)

// FeatureSchema returns the ordered list of derived feature names.
// Raw OHLCV columns are never part of the schema.
func FeatureSchema() []string {
	return []string{
		FeatSMA20, FeatSMA50, FeatRSI,
		FeatMACD, FeatMACDSignal, FeatMACDHist,
		FeatBBUpper, FeatBBMiddle, FeatBBLower, FeatBBPosition,
		FeatVolumeRatio, FeatHLRatio, FeatCORatio,
	}
}

// FeatureRow is a candle plus its derived indicator columns. Rows are built
// only once every indicator is defined; warm-up rows never leave the engine.
type FeatureRow struct {
	Candle

	SMA20       float64
	SMA50       float64
	RSI         float64
	MACD        float64
	MACDSignal  float64
	MACDHist    float64
	BBUpper     float64
	BBMiddle    float64
	BBLower     float64
	BBPosition  float64
	VolumeRatio float64
	HLRatio     float64
	CORatio     float64
}

// Feature returns the derived column by schema name. The second result is
// false for unknown names, which callers treat as schema drift.
func (r *FeatureRow) Feature(name string) (float64, bool) {
	switch name {
	case FeatSMA20:
		return r.SMA20, true
	case FeatSMA50:
		return r.SMA50, true
	case FeatRSI:
		return r.RSI, true
	case FeatMACD:
		return r.MACD, true
	case FeatMACDSignal:
		return r.MACDSignal, true
	case FeatMACDHist:
		return r.MACDHist, true
	case FeatBBUpper:
		return r.BBUpper, true
	case FeatBBMiddle:
		return r.BBMiddle, true
	case FeatBBLower:
		return r.BBLower, true
	case FeatBBPosition:
		return r.BBPosition, true
	case FeatVolumeRatio:
		return r.VolumeRatio, true
	case FeatHLRatio:
		return r.HLRatio, true
	case FeatCORatio:
		return r.CORatio, true
	default:
		return 0, false
	}
}

// PricePoint marks a local extreme in a candle sequence.
type PricePoint struct {
	Index  int
	Bucket time.Time
	Price  float64
}

// PatternAnalysis is the peak/trough breakout classification for a sequence.
// It is reporting output, not part of the numeric feature schema.
type PatternAnalysis struct {
	Symbol     string
	Timestamp  time.Time
	Pattern    string // "bullish_breakout", "bearish_breakdown", "consolidation", "none"
	Close      float64
	LastPeak   *PricePoint
	LastTrough *PricePoint
	Peaks      []PricePoint
	Troughs    []PricePoint
}
