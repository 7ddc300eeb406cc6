package usecase

import (
	"context"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/services/features"
	applogger "FinCast/pkg/logger"
	pkgqueue "FinCast/pkg/queue"
)

// SchedulerConfig drives the periodic prediction and retraining cycles.
type SchedulerConfig struct {
	Instruments     []string
	Timeframe       domrepo.Timeframe
	Kind            models.ModelKind
	PredictInterval time.Duration
	RetrainInterval time.Duration
	PredictCandles  int
	TrainCandles    int
	AlertThreshold  float64
}

// Scheduler periodically predicts the next move for every configured
// instrument and enqueues retraining jobs. Instruments are independent,
// so the prediction cycle fans out per instrument.
type Scheduler struct {
	cfg       SchedulerConfig
	candles   domrepo.CandleStore
	engine    *features.Engine
	predictor *Predictor
	reporter  *AlertReporter
	queue     pkgqueue.QueueService
	l         *applogger.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(
	cfg SchedulerConfig,
	candles domrepo.CandleStore,
	engine *features.Engine,
	predictor *Predictor,
	reporter *AlertReporter,
	queue pkgqueue.QueueService,
	l *applogger.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		candles:   candles,
		engine:    engine,
		predictor: predictor,
		reporter:  reporter,
		queue:     queue,
		l:         l,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the prediction and retraining loops.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx, s.cfg.PredictInterval, s.predictCycle)
	if s.queue != nil && s.cfg.RetrainInterval > 0 {
		s.wg.Add(1)
		go s.loop(ctx, s.cfg.RetrainInterval, s.retrainCycle)
	}
}

// Stop stops the loops and waits for in-flight cycles.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, cycle func(context.Context)) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			cycle(ctx)
		}
	}
}

// predictCycle scores the newest rows of every instrument and hands the
// summary to the alert reporter.
func (s *Scheduler) predictCycle(ctx context.Context) {
	featureSet := make(map[string][]models.FeatureRow, len(s.cfg.Instruments))
	for _, instrument := range s.cfg.Instruments {
		candles, err := s.candles.GetLatestNCandles(ctx, instrument, s.cfg.PredictCandles, s.cfg.Timeframe)
		if err != nil {
			if s.l != nil {
				s.l.Warn("scheduler candles fetch failed",
					applogger.String("instrument", instrument),
					applogger.Error(err),
				)
			}
			continue
		}
		rows, err := s.engine.Compute(candles)
		if err != nil {
			if s.l != nil {
				s.l.Warn("scheduler features failed",
					applogger.String("instrument", instrument),
					applogger.Error(err),
				)
			}
			continue
		}
		featureSet[instrument] = rows
	}
	if len(featureSet) == 0 {
		return
	}

	results := s.predictor.PredictBatch(ctx, featureSet, s.cfg.AlertThreshold)
	summary := s.predictor.Summarize(results)
	if s.reporter != nil {
		_ = s.reporter.Publish(ctx, summary)
	}
}

// retrainCycle enqueues one training job per instrument; the queue workers
// do the heavy lifting behind the per-artifact lock.
func (s *Scheduler) retrainCycle(ctx context.Context) {
	for _, instrument := range s.cfg.Instruments {
		payload := TrainJobPayload{
			Instrument: instrument,
			Timeframe:  string(s.cfg.Timeframe),
			Kind:       s.cfg.Kind,
			Candles:    s.cfg.TrainCandles,
		}
		if err := s.queue.PublishMessage(ctx, TrainJobType, payload); err != nil {
			if s.l != nil {
				s.l.Error("scheduler enqueue failed",
					applogger.String("instrument", instrument),
					applogger.Error(err),
				)
			}
		}
	}
}
