package features

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
)

// Config holds the indicator windows. Zero values fall back to defaults.
type Config struct {
	SMAFast      int
	SMASlow      int
	RSIPeriod    int
	MACDFast     int
	MACDSlow     int
	MACDSignal   int
	BollPeriod   int
	BollK        float64
	VolumeWindow int
}

// DefaultConfig returns the standard window set.
func DefaultConfig() Config {
	return Config{
		SMAFast:      20,
		SMASlow:      50,
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BollPeriod:   20,
		BollK:        2,
		VolumeWindow: 20,
	}
}

// Engine turns candle sequences into feature tables. Engines are stateless
// and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates a feature engine; zero config fields get defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SMAFast <= 0 {
		cfg.SMAFast = def.SMAFast
	}
	if cfg.SMASlow <= 0 {
		cfg.SMASlow = def.SMASlow
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = def.RSIPeriod
	}
	if cfg.MACDFast <= 0 {
		cfg.MACDFast = def.MACDFast
	}
	if cfg.MACDSlow <= 0 {
		cfg.MACDSlow = def.MACDSlow
	}
	if cfg.MACDSignal <= 0 {
		cfg.MACDSignal = def.MACDSignal
	}
	if cfg.BollPeriod <= 0 {
		cfg.BollPeriod = def.BollPeriod
	}
	if cfg.BollK <= 0 {
		cfg.BollK = def.BollK
	}
	if cfg.VolumeWindow <= 0 {
		cfg.VolumeWindow = def.VolumeWindow
	}
	return &Engine{cfg: cfg}
}

// Schema returns the ordered derived column names the engine produces.
func (e *Engine) Schema() []string { return models.FeatureSchema() }

// MinCandles returns the longest warm-up any indicator needs. Sequences
// shorter than this cannot produce a single fully defined row.
func (e *Engine) MinCandles() int {
	min := e.cfg.SMAFast
	for _, w := range []int{e.cfg.SMASlow, e.cfg.RSIPeriod + 1, e.cfg.BollPeriod, e.cfg.VolumeWindow} {
		if w > min {
			min = w
		}
	}
	return min
}

// Compute derives one FeatureRow per candle for which every indicator is
// defined. Warm-up rows and rows with undefined values (zero-width band,
// zero rolling volume) are dropped, never emitted as NaN.
func (e *Engine) Compute(candles []models.Candle) ([]models.FeatureRow, error) {
	if len(candles) < e.MinCandles() {
		return nil, fmt.Errorf("%d candles, need %d for indicator warm-up: %w",
			len(candles), e.MinCandles(), models.ErrInsufficientData)
	}

	n := len(candles)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	smaFast := SMA(closes, e.cfg.SMAFast)
	smaSlow := SMA(closes, e.cfg.SMASlow)
	rsi := RSI(closes, e.cfg.RSIPeriod)
	macd, macdSig, macdHist := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	bbUpper, bbMiddle, bbLower, bbPos := Bollinger(closes, e.cfg.BollPeriod, e.cfg.BollK)
	volRatio := VolumeRatio(volumes, e.cfg.VolumeWindow)

	rows := make([]models.FeatureRow, 0, n)
	for i, c := range candles {
		var hlRatio, coRatio float64
		if c.Close != 0 {
			hlRatio = (c.High - c.Low) / c.Close
		} else {
			hlRatio = nan
		}
		if c.Open != 0 {
			coRatio = (c.Close - c.Open) / c.Open
		} else {
			coRatio = nan
		}

		row := models.FeatureRow{
			Candle:      c,
			SMA20:       smaFast[i],
			SMA50:       smaSlow[i],
			RSI:         rsi[i],
			MACD:        macd[i],
			MACDSignal:  macdSig[i],
			MACDHist:    macdHist[i],
			BBUpper:     bbUpper[i],
			BBMiddle:    bbMiddle[i],
			BBLower:     bbLower[i],
			BBPosition:  bbPos[i],
			VolumeRatio: volRatio[i],
			HLRatio:     hlRatio,
			CORatio:     coRatio,
		}
		if rowDefined(&row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// rowDefined reports whether every derived column is a finite number.
func rowDefined(r *models.FeatureRow) bool {
	for _, name := range models.FeatureSchema() {
		v, ok := r.Feature(name)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Analyze classifies the sequence's price structure from its local extremes.
// The result is for reporting; it never feeds the numeric schema.
func (e *Engine) Analyze(candles []models.Candle) (*models.PatternAnalysis, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles to analyze: %w", models.ErrInsufficientData)
	}

	last := candles[len(candles)-1]
	out := &models.PatternAnalysis{
		Symbol:    last.Symbol,
		Timestamp: last.Bucket,
		Close:     last.Close,
		Pattern:   "none",
	}

	for i := 1; i < len(candles)-1; i++ {
		if candles[i].High > candles[i-1].High && candles[i].High > candles[i+1].High {
			out.Peaks = append(out.Peaks, models.PricePoint{Index: i, Bucket: candles[i].Bucket, Price: candles[i].High})
		}
		if candles[i].Low < candles[i-1].Low && candles[i].Low < candles[i+1].Low {
			out.Troughs = append(out.Troughs, models.PricePoint{Index: i, Bucket: candles[i].Bucket, Price: candles[i].Low})
		}
	}
	if len(out.Peaks) == 0 || len(out.Troughs) == 0 {
		return out, nil
	}

	peak := out.Peaks[len(out.Peaks)-1]
	trough := out.Troughs[len(out.Troughs)-1]
	out.LastPeak = &peak
	out.LastTrough = &trough

	switch {
	case last.Close > peak.Price:
		out.Pattern = "bullish_breakout"
	case last.Close < trough.Price:
		out.Pattern = "bearish_breakdown"
	default:
		out.Pattern = "consolidation"
	}
	return out, nil
}
