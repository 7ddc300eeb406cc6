//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideCandleStorage,
		ProvideCandlePublisher,
		ProvideSummaryPublisher,
		ProvideMarketStream,
		ProvideCandleStore,
		ProvideResultLog,
		ProvideArtifactStore,

		// Ingest use cases
		ProvideCandleProcessor,
		ProvideCandleCollector,
		ProvideKafkaCandlesHandler,

		// Forecasting use cases
		ProvideFeatureEngine,
		ProvideTrainer,
		ProvidePredictor,
		ProvideBacktester,
		ProvideCandlesUseCase,
		ProvideAlertReporter,
		ProvideTrainJob,
		ProvideQueue,
		ProvideScheduler,

		// HTTP API and application server
		ProvideForecastHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
