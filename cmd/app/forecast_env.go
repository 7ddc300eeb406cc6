package main

import (
	"FinCast/internal/di"
	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/services/features"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
)

// forecastEnv holds the minimal dependency set for the one-shot commands.
// No Kafka, WebSocket or HTTP server is started.
type forecastEnv struct {
	store      domrepo.CandleStore
	engine     *features.Engine
	trainer    *usecase.Trainer
	predictor  *usecase.Predictor
	backtester *usecase.Backtester
}

func newForecastEnv(cfg *config.Config) (*forecastEnv, error) {
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	artifacts, err := di.ProvideArtifactStore(cfg)
	if err != nil {
		return nil, err
	}

	cache, err := di.ProvideCache(cfg)
	if err != nil {
		return nil, err
	}
	store := di.ProvideCandleStore(chClient, l, cache)
	resultLog := di.ProvideResultLog(chClient)
	engine := di.ProvideFeatureEngine()

	return &forecastEnv{
		store:      store,
		engine:     engine,
		trainer:    di.ProvideTrainer(engine, artifacts, l, cfg),
		predictor:  di.ProvidePredictor(artifacts, l, resultLog, di.ProvideMetrics()),
		backtester: di.ProvideBacktester(artifacts, l, resultLog),
	}, nil
}

// newBackfiller builds the REST-to-ClickHouse backfiller for one timeframe
// table.
func newBackfiller(cfg *config.Config, tf domrepo.Timeframe) (*usecase.Backfiller, error) {
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	store := internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".candles_"+string(tf))
	return usecase.NewBackfiller(di.ProvideRestClient(cfg), store, l), nil
}

func resolveKind(cfg *config.Config) models.ModelKind {
	if modelKind != "" {
		return models.ModelKind(modelKind)
	}
	return models.ModelKind(cfg.Model.Kind)
}
