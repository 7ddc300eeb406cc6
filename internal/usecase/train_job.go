package usecase

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/service/metrics"
	pkgcache "FinCast/pkg/cache"
	applogger "FinCast/pkg/logger"
	pkgqueue "FinCast/pkg/queue"
)

// TrainJobType is the queue message type for scheduled retraining.
const TrainJobType = "train_model"

// TrainLockTTL bounds how long a training run may hold its per-artifact
// lock before another writer may claim the id.
const TrainLockTTL = 15 * time.Minute

// TrainLockKey names the cache lock that serializes training writers on
// one artifact id. The API and the queue workers share it.
func TrainLockKey(artifactID string) string {
	return pkgcache.GenerateKey("train", artifactID)
}

// TrainJobPayload names one retraining request.
type TrainJobPayload struct {
	Instrument string           `json:"instrument"`
	Timeframe  string           `json:"timeframe"`
	Kind       models.ModelKind `json:"kind"`
	Candles    int              `json:"candles"`
	ArtifactID string           `json:"artifact_id"`
}

// TrainJob retrains one instrument's artifact from stored candles. Writers
// on the same artifact id are serialized through a cache lock; retraining
// an id that is already training is skipped, not queued behind.
type TrainJob struct {
	candles domrepo.CandleStore
	trainer *Trainer
	locks   pkgcache.Service
	l       *applogger.Logger
}

func NewTrainJob(candles domrepo.CandleStore, trainer *Trainer, locks pkgcache.Service, l *applogger.Logger) *TrainJob {
	return &TrainJob{candles: candles, trainer: trainer, locks: locks, l: l}
}

var _ pkgqueue.Job = (*TrainJob)(nil)

func (j *TrainJob) Name() string { return "train-job" }

func (j *TrainJob) Type() string { return TrainJobType }

func (j *TrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := pkgqueue.ParsePayload[TrainJobPayload](payload)
	if err != nil {
		return fmt.Errorf("train job payload: %w", err)
	}
	if p.Instrument == "" {
		return fmt.Errorf("train job has no instrument")
	}
	if p.ArtifactID == "" {
		p.ArtifactID = DefaultArtifactID(p.Instrument, p.Kind)
	}

	if j.locks != nil {
		lockKey := TrainLockKey(p.ArtifactID)
		ok, err := j.locks.TryLock(ctx, lockKey, TrainLockTTL)
		if err != nil {
			return fmt.Errorf("train lock %s: %w", p.ArtifactID, err)
		}
		if !ok {
			if j.l != nil {
				j.l.Warn("training already in progress, skipping",
					applogger.String("artifact", p.ArtifactID))
			}
			return nil
		}
		defer func() {
			if err := j.locks.Unlock(context.WithoutCancel(ctx), lockKey); err != nil && j.l != nil {
				j.l.Warn("train unlock failed", applogger.Error(err))
			}
		}()
	}

	tf := domrepo.NormalizeTimeframe(p.Timeframe)
	candles, err := j.candles.GetLatestNCandles(ctx, p.Instrument, p.Candles, tf)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues(models.TrainStatusFailed, string(p.Kind)).Inc()
		return fmt.Errorf("candles for %s: %w", p.Instrument, err)
	}

	res, err := j.trainer.TrainFromCandles(ctx, p.Instrument, candles, p.Kind, p.ArtifactID)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues(models.TrainStatusFailed, string(p.Kind)).Inc()
		return fmt.Errorf("train %s: %w", p.Instrument, err)
	}
	metrics.TrainingRuns.WithLabelValues(res.Status, string(p.Kind)).Inc()
	return nil
}
