package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	xhttp "FinCast/pkg/http"
)

// RestClient fetches historical candles from the exchange REST API.
// The kline endpoint follows the common exchange format: an array of
// arrays where numeric fields arrive as strings.
type RestClient struct {
	baseURL string
	http    *xhttp.Client
}

// NewRestClient creates a REST client against baseURL.
func NewRestClient(baseURL string, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// HistoricalCandles returns up to limit candles for symbol in [from, to],
// oldest first. Callers page by advancing from past the last returned bucket.
func (c *RestClient) HistoricalCandles(ctx context.Context, symbol string, tf drepo.Timeframe, from, to time.Time, limit int) ([]*models.Candle, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("rest url not configured")
	}
	if limit <= 0 {
		limit = 500
	}

	var klines [][]interface{}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":    {strings.ToUpper(symbol)},
			"interval":  {string(tf)},
			"startTime": {strconv.FormatInt(from.UnixMilli(), 10)},
			"endTime":   {strconv.FormatInt(to.UnixMilli(), 10)},
			"limit":     {strconv.Itoa(limit)},
		},
	}, &klines)
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s %s: %w", symbol, tf, err)
	}

	candles := make([]*models.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := parseKline(symbol, k)
		if err != nil {
			return nil, fmt.Errorf("parse kline %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline converts one kline row [openTimeMs, o, h, l, c, v, ...] where
// prices and volume are strings.
func parseKline(symbol string, k []interface{}) (*models.Candle, error) {
	if len(k) < 6 {
		return nil, fmt.Errorf("short kline row: %d fields", len(k))
	}
	ms, ok := k[0].(float64)
	if !ok {
		return nil, fmt.Errorf("open time is %T, want number", k[0])
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := k[i].(string)
		if !ok {
			return nil, fmt.Errorf("field %d is %T, want string", i, k[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i-1] = v
	}

	return &models.Candle{
		Bucket: time.UnixMilli(int64(ms)).UTC(),
		Symbol: strings.ToUpper(symbol),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
