package di

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
	"FinCast/internal/handler/api"
	mid "FinCast/internal/middleware"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/marketdata"
	"FinCast/internal/services/features"
	"FinCast/internal/usecase"
	pkgcache "FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	pkgqueue "FinCast/pkg/queue"
	"FinCast/pkg/server"

	"github.com/segmentio/kafka-go"
)

// chSchema is the full ClickHouse DDL the service depends on.
var chSchema = []string{
	"CREATE DATABASE IF NOT EXISTS fincast",
	`CREATE TABLE IF NOT EXISTS fincast.candles_1m
        (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64)
        ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS fincast.candles_5m
        (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64)
        ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS fincast.candles_15m
        (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64)
        ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS fincast.candles_1h
        (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64)
        ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS fincast.candles_1d
        (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64)
        ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS fincast.predictions
        (symbol String, ts DateTime, signal String, label Int8, confidence Float64,
         alert UInt8, model_kind String, artifact_version String)
        ENGINE=MergeTree ORDER BY (symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS fincast.backtest_runs
        (run_id String, symbol String, artifact_id String, model_kind String,
         started_at DateTime, duration_seconds Float64,
         total_backtests Int64, wins Int64, win_rate Float64,
         bull_predictions Int64, bear_predictions Int64, bull_actuals Int64, bear_actuals Int64,
         bull_precision Float64, bull_recall Float64, bear_precision Float64, bear_recall Float64,
         average_confidence Float64, high_conf_trades Int64, high_conf_wins Int64,
         high_conf_win_rate Float64, skipped_rows Int64)
        ENGINE=MergeTree ORDER BY (symbol, started_at)`,
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, chSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
// Handler failures are counted through the shared error metric.
func ProvideKafkaConsumer(cfg *config.Config, m repository.Metrics) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(pkgkafka.HookFuncs{
		Err: func(_ context.Context, topic string, _ kafka.Message, _ []byte, _ error) {
			m.RecordError("kafka_consume_" + topic)
		},
	})
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStorage creates the ClickHouse ingest repository.
func ProvideCandleStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".candles_1m")
}

// ProvideCandlePublisher creates the Kafka candle publisher.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.CandlesTopic)
}

// ProvideSummaryPublisher creates the alerts topic publisher.
func ProvideSummaryPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SummaryPublisher {
	return internalrepo.NewKafkaSummaryPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, store, metrics)
}

// ProvideRestClient creates the exchange REST client used for historical
// candle backfills.
func ProvideRestClient(cfg *config.Config) *marketdata.RestClient {
	return marketdata.NewRestClient(cfg.Market.RestURL, cfg.Market.HTTPTimeout)
}

// ProvideMarketStream creates the WebSocket candle stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return marketdata.New(
		cfg.Market.APIKey,
		cfg.Market.WebSocketURL,
		cfg.Market.Symbols,
		cfg.Market.ReconnectDelay,
		cfg.Market.PingInterval,
	)
}

// ProvideCandleProcessor creates the candle processor use case.
func ProvideCandleProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideCandleCollector creates the collector with its ingest pipeline.
func ProvideCandleCollector(
	stream repository.MarketStream,
	processor *usecase.CandleProcessor,
	metrics repository.Metrics,
) *usecase.CandleCollector {
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewCandleCollector(stream, processor, metrics, pipe)
}

// ProvideCandleStore creates the read-side candle store with a short
// read-through cache in front of the hot candle queries.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger, cache pkgcache.Service) repository.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)
	store.SetCache(cache)
	return store
}

// ProvideResultLog creates the prediction/backtest history sink.
func ProvideResultLog(chClient *pkgch.Client) repository.ResultLog {
	return internalrepo.NewCHResultLog(chClient.DB())
}

// ProvideArtifactStore creates the on-disk model artifact store.
func ProvideArtifactStore(cfg *config.Config) (repository.ArtifactStore, error) {
	return internalrepo.NewFileArtifactStore(cfg.Model.ArtifactDir)
}

// ProvideFeatureEngine creates the indicator feature engine.
func ProvideFeatureEngine() *features.Engine {
	return features.NewEngine(features.Config{})
}

// ProvideTrainer creates the model trainer.
func ProvideTrainer(engine *features.Engine, store repository.ArtifactStore, l *applogger.Logger, cfg *config.Config) *usecase.Trainer {
	return usecase.NewTrainer(engine, store, l, cfg.Model.TestRatio)
}

// ProvidePredictor creates the prediction engine.
func ProvidePredictor(store repository.ArtifactStore, l *applogger.Logger, rl repository.ResultLog, m repository.Metrics) *usecase.Predictor {
	p := usecase.NewPredictor(store, l)
	p.SetResultLog(rl)
	p.SetMetrics(m)
	return p
}

// ProvideBacktester creates the walk-forward backtester.
func ProvideBacktester(store repository.ArtifactStore, l *applogger.Logger, rl repository.ResultLog) *usecase.Backtester {
	b := usecase.NewBacktester(store, l)
	b.SetResultLog(rl)
	return b
}

// ProvideCandlesUseCase creates the candle read use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideAlertReporter creates the summary reporter.
func ProvideAlertReporter(pub repository.SummaryPublisher, l *applogger.Logger) *usecase.AlertReporter {
	return usecase.NewAlertReporter(pub, l)
}

// ProvideCache creates the cache behind candle reads and the locks that
// serialize training writers. Without Redis a process-local memory cache
// still serves reads and guards in-process races.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("fincast"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideTrainJob creates the queue job for scheduled retraining.
func ProvideTrainJob(store repository.CandleStore, trainer *usecase.Trainer, locks pkgcache.Service, l *applogger.Logger) *usecase.TrainJob {
	return usecase.NewTrainJob(store, trainer, locks, l)
}

// ProvideQueue creates the Redis-backed training queue, or nil when Redis
// is disabled (one-shot training through the API still works without it).
func ProvideQueue(cfg *config.Config, l *applogger.Logger, job *usecase.TrainJob) (*pkgqueue.RedisQueue, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis queue client: %w", err)
	}
	q := pkgqueue.NewRedisQueue(l, &pkgqueue.QueueConfig{
		Workers:    2,
		RetryLimit: 2,
		RetryDelay: 30 * time.Second,
	}, rc.Client(), pkgqueue.WithKeyPrefix("fincast:queue"))
	q.RegisterJob(job)
	return q, nil
}

// ProvideScheduler creates the periodic forecast scheduler, or nil when
// disabled.
func ProvideScheduler(
	cfg *config.Config,
	store repository.CandleStore,
	engine *features.Engine,
	predictor *usecase.Predictor,
	reporter *usecase.AlertReporter,
	queue *pkgqueue.RedisQueue,
	l *applogger.Logger,
) *usecase.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	var qs pkgqueue.QueueService
	if queue != nil {
		qs = queue
	}
	return usecase.NewScheduler(usecase.SchedulerConfig{
		Instruments:     cfg.Market.Symbols,
		Timeframe:       repository.TF1h,
		Kind:            models.ModelKind(cfg.Model.Kind),
		PredictInterval: cfg.Scheduler.PredictInterval,
		RetrainInterval: cfg.Scheduler.RetrainInterval,
		PredictCandles:  cfg.Model.PredictCandles,
		TrainCandles:    cfg.Model.TrainCandles,
		AlertThreshold:  cfg.Model.AlertThreshold,
	}, store, engine, predictor, reporter, qs, l)
}

// ProvideForecastHandler creates the Echo API handler.
func ProvideForecastHandler(
	cfg *config.Config,
	l *applogger.Logger,
	candlesUC *usecase.CandlesUseCase,
	store repository.CandleStore,
	artifacts repository.ArtifactStore,
	engine *features.Engine,
	trainer *usecase.Trainer,
	predictor *usecase.Predictor,
	backtester *usecase.Backtester,
	reporter *usecase.AlertReporter,
	locks pkgcache.Service,
) xhttp.Handler {
	h := api.NewForecastHandler(
		l, candlesUC, store, artifacts, engine,
		trainer, predictor, backtester, reporter,
		models.ModelKind(cfg.Model.Kind),
	)
	h.SetLocks(locks)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	producer *pkgkafka.Producer,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	queue *pkgqueue.RedisQueue,
	scheduler *usecase.Scheduler,
) *server.App {
	// Aggregate repeated error logs and ship them to Kafka when brokers
	// are configured.
	if len(cfg.Kafka.Brokers) > 0 {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      internalrepo.NewKafkaLogPublisher(producer),
		})
	}

	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetLogger(l)
	app.SetHTTPHandler(handler)
	if queue != nil {
		app.SetQueue(queue)
	}
	if scheduler != nil {
		app.SetScheduler(scheduler)
	}
	if collector != nil {
		app.CandleProc = collector.Processor()
	}
	return app
}
