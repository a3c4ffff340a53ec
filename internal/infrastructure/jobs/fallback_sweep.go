package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadrouter.backend/internal/usecases"
	"leadrouter.backend/pkg/logger"
	"leadrouter.backend/pkg/redis"
)

// SweepLockKey guards the sweep when several API replicas run the ticker.
const SweepLockKey = "leadrouter:lock:fallback-sweep"

// FallbackSweeper runs one pass of the fallback reassignment.
type FallbackSweeper interface {
	RunFallbackSweep(ctx context.Context, now time.Time) (*usecases.SweepResult, error)
}

var (
	lockEnabled = redis.Enabled
	acquireLock = redis.AcquireLock
	releaseLock = redis.ReleaseLock
)

// FallbackSweepJob periodically reassigns leads whose priority window lapsed
type FallbackSweepJob struct {
	sweeper  FallbackSweeper
	interval time.Duration
	stop     chan struct{}
	now      func() time.Time
}

func NewFallbackSweepJob(sweeper FallbackSweeper, interval time.Duration) *FallbackSweepJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &FallbackSweepJob{
		sweeper:  sweeper,
		interval: interval,
		stop:     make(chan struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (j *FallbackSweepJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting fallback sweep job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Fallback sweep job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Fallback sweep job stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *FallbackSweepJob) Stop() {
	close(j.stop)
}

// RunOnce sweeps unless another replica holds the lock. It reports whether a
// sweep ran.
func (j *FallbackSweepJob) RunOnce(ctx context.Context) bool {
	if lockEnabled() {
		token := uuid.NewString()
		ok, err := acquireLock(ctx, SweepLockKey, token, j.interval)
		if err != nil {
			logger.Error(ctx, "Fallback sweep lock failed", zap.Error(err))
			return false
		}
		if !ok {
			logger.Debug(ctx, "Fallback sweep already running elsewhere")
			return false
		}
		defer func() {
			if err := releaseLock(context.WithoutCancel(ctx), SweepLockKey, token); err != nil {
				logger.Warn(ctx, "Fallback sweep lock release failed", zap.Error(err))
			}
		}()
	}

	result, err := j.sweeper.RunFallbackSweep(ctx, j.now())
	if err != nil {
		logger.Error(ctx, "Fallback sweep failed", zap.Error(err))
		return true
	}
	if result.Processed > 0 || result.Failed > 0 {
		logger.Info(ctx, "Fallback sweep completed",
			zap.Int("processed", result.Processed),
			zap.Int("assigned", result.Assigned),
			zap.Int("failed", result.Failed),
		)
	}
	return true
}
