package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/pkg/logger"
)

// Periodic enqueues the fallback sweep on a cron schedule
type Periodic struct {
	scheduler *asynq.Scheduler
	queue     string
	interval  time.Duration
}

func NewPeriodic(redisCfg config.RedisConfig, routing config.RoutingConfig) (*Periodic, error) {
	opt, err := redisClientOpt(redisCfg.URL, redisCfg.PASSWORD)
	if err != nil {
		return nil, err
	}
	queue := routing.SweepQueue
	if queue == "" {
		queue = "default"
	}
	interval := routing.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Periodic{
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC}),
		queue:     queue,
		interval:  interval,
	}, nil
}

// Register adds the sweep entry. A sweep still queued when the next one is
// due is not duplicated.
func (p *Periodic) Register(cronspec string) (string, error) {
	task, err := NewFallbackSweepTask(FallbackSweepPayload{Trigger: TriggerCron})
	if err != nil {
		return "", err
	}
	return p.scheduler.Register(cronspec, task,
		asynq.Queue(p.queue),
		asynq.Unique(p.interval),
		asynq.MaxRetry(0),
	)
}

// Run blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	logger.Info(ctx, "Periodic scheduler started", zap.String("queue", p.queue))
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
