package features

import "math"

// Indicator columns are computed full-length: index i of every output
// corresponds to candle i, with NaN for rows inside the warm-up window.
// NaN propagates through rolling windows so a partially defined input
// never yields a silently wrong value.

var nan = math.NaN()

// SMA computes a simple moving average column over the given window.
// Windows are recomputed in full so a NaN input poisons only the windows
// that contain it, not every window after it.
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < window-1 || window <= 0 {
			out[i] = nan
			continue
		}
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// EMA computes an exponential moving average column with alpha = 2/(period+1),
// seeded with the first value.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// RollingStd computes a rolling sample standard deviation (n-1 denominator).
func RollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < window-1 || window < 2 {
			out[i] = nan
			continue
		}
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(window)
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window-1))
	}
	return out
}

// RSI computes the relative strength index over the period. The first delta
// is undefined, so values before index period are NaN. All-loss windows give
// 0, all-gain windows give 100; a window with no movement at all is NaN.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	if n > 0 {
		gains[0], losses[0] = nan, nan
	}
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i], losses[i] = delta, 0
		} else {
			gains[i], losses[i] = 0, -delta
		}
	}
	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD computes the EMA(fast)-EMA(slow) line, its EMA(signal) line, and the
// histogram (line minus signal).
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// Bollinger computes the middle band (SMA), upper and lower bands at
// k standard deviations, and the close's normalized position in the band.
// Position is NaN when the band has zero width.
func Bollinger(closes []float64, window int, k float64) (upper, middle, lower, position []float64) {
	middle = SMA(closes, window)
	std := RollingStd(closes, window)
	n := len(closes)
	upper = make([]float64, n)
	lower = make([]float64, n)
	position = make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
		width := upper[i] - lower[i]
		if width == 0 {
			position[i] = nan
			continue
		}
		position[i] = (closes[i] - lower[i]) / width
	}
	return upper, middle, lower, position
}

// VolumeRatio computes volume over its rolling mean. A zero rolling mean
// leaves the ratio undefined.
func VolumeRatio(volumes []float64, window int) []float64 {
	avg := SMA(volumes, window)
	out := make([]float64, len(volumes))
	for i := range volumes {
		if avg[i] == 0 {
			out[i] = nan
			continue
		}
		out[i] = volumes[i] / avg[i]
	}
	return out
}
