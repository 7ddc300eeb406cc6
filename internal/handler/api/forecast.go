package api

import (
	"context"
	"errors"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/service/metrics"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/services/features"
	"FinCast/internal/usecase"
	pkgcache "FinCast/pkg/cache"
	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler serves the train/predict/backtest/analysis API over Echo.
type ForecastHandler struct {
	logger     *xlogger.Logger
	candles    *usecase.CandlesUseCase
	store      domrepo.CandleStore
	artifacts  domrepo.ArtifactStore
	engine     *features.Engine
	trainer    *usecase.Trainer
	predictor  *usecase.Predictor
	backtester *usecase.Backtester
	reporter   *usecase.AlertReporter
	rl         *ratelimit.Limiter
	locks      pkgcache.Service

	defaultKind models.ModelKind
}

func NewForecastHandler(
	logger *xlogger.Logger,
	candles *usecase.CandlesUseCase,
	store domrepo.CandleStore,
	artifacts domrepo.ArtifactStore,
	engine *features.Engine,
	trainer *usecase.Trainer,
	predictor *usecase.Predictor,
	backtester *usecase.Backtester,
	reporter *usecase.AlertReporter,
	defaultKind models.ModelKind,
) *ForecastHandler {
	metrics.Register()
	return &ForecastHandler{
		logger:      logger,
		candles:     candles,
		store:       store,
		artifacts:   artifacts,
		engine:      engine,
		trainer:     trainer,
		predictor:   predictor,
		backtester:  backtester,
		reporter:    reporter,
		rl:          ratelimit.New(),
		defaultKind: defaultKind,
	}
}

// SetLocks attaches the cache that serializes training writers per artifact
// id, shared with the queue workers.
func (h *ForecastHandler) SetLocks(locks pkgcache.Service) {
	h.locks = locks
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/candles", h.Candles)
	g.POST("/train", h.Train)
	g.POST("/predict", h.Predict)
	g.POST("/backtest", h.Backtest)
	g.GET("/analysis", h.Analysis)
	g.GET("/models", h.Models)
}

// domainErrorResponse maps the forecast error taxonomy onto the AppError
// envelope in one place.
func (h *ForecastHandler) domainErrorResponse(c echo.Context, endpoint string, err error) error {
	metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error(endpoint+" error", xlogger.Error(err))
	switch {
	case errors.Is(err, models.ErrArtifactNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("%v", err))
	case errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrUnknownModelKind),
		errors.Is(err, models.ErrSchemaMismatch):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("%v", err))
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}

func (h *ForecastHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ForecastHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	now := time.Now().UTC()

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      xhttp.ParseTimeDefault(req.From, now.Add(-24*time.Hour)),
		To:        xhttp.ParseTimeDefault(req.To, now),
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		return h.domainErrorResponse(c, "candles", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Train(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.ForecastLatency.WithLabelValues("train").Observe(time.Since(start).Seconds())
	}()

	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// training is expensive; throttle aggressively per client
	if !h.rl.Allow(c.RealIP()+":train", 2, 0.1) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("too many training requests"))
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	ctx := c.Request().Context()

	kind := models.ModelKind(req.Kind)
	artifactID := req.ArtifactID
	if artifactID == "" {
		artifactID = usecase.DefaultArtifactID(req.Symbol, kind)
	}
	if h.locks != nil {
		ok, err := h.locks.TryLock(ctx, usecase.TrainLockKey(artifactID), usecase.TrainLockTTL)
		if err != nil {
			return h.domainErrorResponse(c, "train", err)
		}
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.ConflictErrorf("training already in progress for %s", artifactID))
		}
		defer func() {
			if err := h.locks.Unlock(context.WithoutCancel(ctx), usecase.TrainLockKey(artifactID)); err != nil {
				h.logger.Warn("train unlock failed", xlogger.Error(err))
			}
		}()
	}

	candles, err := h.fetchCandles(c, req.Symbol, req.From, req.To, req.N, tf)
	if err != nil {
		return h.domainErrorResponse(c, "train", err)
	}

	res, err := h.trainer.TrainFromCandles(ctx, req.Symbol, candles, kind, artifactID)
	if err != nil {
		return h.domainErrorResponse(c, "train", err)
	}
	metrics.TrainingRuns.WithLabelValues(res.Status, string(res.Kind)).Inc()
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Predict(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.ForecastLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	}()

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	ctx := c.Request().Context()

	featureSet := make(map[string][]models.FeatureRow, len(req.Symbols))
	for _, symbol := range req.Symbols {
		if !h.predictor.HasModel(symbol) {
			id := usecase.DefaultArtifactID(symbol, h.defaultKind)
			if err := h.predictor.LoadModel(ctx, symbol, id); err != nil {
				h.logger.Warn("predict: no artifact for symbol",
					xlogger.String("symbol", symbol), xlogger.Error(err))
				continue
			}
		}
		candles, err := h.store.GetLatestNCandles(ctx, symbol, req.N, tf)
		if err != nil {
			h.logger.Warn("predict: candle fetch failed",
				xlogger.String("symbol", symbol), xlogger.Error(err))
			continue
		}
		rows, err := h.engine.Compute(candles)
		if err != nil {
			h.logger.Warn("predict: features failed",
				xlogger.String("symbol", symbol), xlogger.Error(err))
			continue
		}
		featureSet[symbol] = rows
	}

	results := h.predictor.PredictBatch(ctx, featureSet, req.Threshold)
	summary := h.predictor.Summarize(results)
	if req.Publish && h.reporter != nil {
		if err := h.reporter.Publish(ctx, summary); err != nil {
			h.logger.Warn("predict: summary publish failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *ForecastHandler) Backtest(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.ForecastLatency.WithLabelValues("backtest").Observe(time.Since(start).Seconds())
	}()

	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":backtest", 5, 0.5) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("too many backtest requests"))
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	ctx := c.Request().Context()

	candles, err := h.fetchCandles(c, req.Symbol, req.From, req.To, req.N, tf)
	if err != nil {
		return h.domainErrorResponse(c, "backtest", err)
	}
	rows, err := h.engine.Compute(candles)
	if err != nil {
		return h.domainErrorResponse(c, "backtest", err)
	}

	artifactID := req.ArtifactID
	if artifactID == "" {
		artifactID = usecase.DefaultArtifactID(req.Symbol, h.defaultKind)
	}
	res, err := h.backtester.Run(ctx, req.Symbol, artifactID, rows)
	if err != nil {
		return h.domainErrorResponse(c, "backtest", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	candles, err := h.store.GetLatestNCandles(c.Request().Context(), req.Symbol, req.N, tf)
	if err != nil {
		return h.domainErrorResponse(c, "analysis", err)
	}
	res, err := h.engine.Analyze(candles)
	if err != nil {
		return h.domainErrorResponse(c, "analysis", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Models(c echo.Context) error {
	infos, err := h.artifacts.List(c.Request().Context())
	if err != nil {
		return h.domainErrorResponse(c, "models", err)
	}
	return xhttp.ListResponse(c, infos, int64(len(infos)))
}

// fetchCandles resolves a from/to range when given, otherwise the latest N.
func (h *ForecastHandler) fetchCandles(c echo.Context, symbol, from, to string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	ctx := c.Request().Context()
	if from != "" || to != "" {
		now := time.Now().UTC()
		return h.store.GetCandles(ctx, symbol,
			xhttp.ParseTimeDefault(from, now.Add(-90*24*time.Hour)),
			xhttp.ParseTimeDefault(to, now),
			tf)
	}
	return h.store.GetLatestNCandles(ctx, symbol, n, tf)
}
