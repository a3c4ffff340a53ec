package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/usecases"
	"leadrouter.backend/pkg/logger"
)

// FallbackSweeper runs one pass of the fallback reassignment.
type FallbackSweeper interface {
	RunFallbackSweep(ctx context.Context, now time.Time) (*usecases.SweepResult, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper FallbackSweeper
	now     func() time.Time
}

func NewWorker(redisCfg config.RedisConfig, routing config.RoutingConfig, sweeper FallbackSweeper) (*Worker, error) {
	opt, err := redisClientOpt(redisCfg.URL, redisCfg.PASSWORD)
	if err != nil {
		return nil, err
	}

	queue := routing.SweepQueue
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		// sweeps must not overlap; one worker slot serializes them
		Concurrency: 1,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		sweeper: sweeper,
		now:     func() time.Time { return time.Now().UTC() },
	}
	w.mux.HandleFunc(TaskFallbackSweep, w.handleFallbackSweep)
	return w, nil
}

func (w *Worker) handleFallbackSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFallbackSweepPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	result, err := w.sweeper.RunFallbackSweep(ctx, w.now())
	if err != nil {
		return err
	}
	logger.Info(ctx, "Scheduled fallback sweep finished",
		zap.String("trigger", payload.Trigger),
		zap.Int("processed", result.Processed),
		zap.Int("assigned", result.Assigned),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		logger.Error(ctx, "Scheduler worker stopped", zap.Error(err))
	}
}
