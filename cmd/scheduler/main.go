// Command scheduler runs the fallback sweep from an asynq queue. The cron
// entry and the worker share one process; with several replicas asynq's
// unique option keeps one sweep queued per interval.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"leadrouter.backend/internal/app"
	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/infrastructure/datasources/postgres"
	"leadrouter.backend/internal/infrastructure/scheduler"
	"leadrouter.backend/pkg/logger"
)

type sweepWorker interface {
	Run(ctx context.Context)
}

type cronRunner interface {
	Register(cronspec string) (string, error)
	Run(ctx context.Context) error
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	openDB     = postgres.Open
	newWorker  = func(cfg *config.Config, sweeper scheduler.FallbackSweeper) (sweepWorker, error) {
		return scheduler.NewWorker(cfg.Redis, cfg.Routing, sweeper)
	}
	newPeriodic = func(cfg *config.Config) (cronRunner, error) {
		return scheduler.NewPeriodic(cfg.Redis, cfg.Routing)
	}
	signalCtx = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	initLog(cfg.Server.Env)
	defer logger.Sync()

	if cfg.Redis.URL == "" {
		return errors.New("REDIS_URL is required for the scheduler")
	}

	db, sqlDB, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer sqlDB.Close()

	application := app.New(cfg, db, app.NewChargeGateway(cfg.Stripe))

	worker, err := newWorker(cfg, application.Routing)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler worker: %w", err)
	}
	periodic, err := newPeriodic(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize periodic scheduler: %w", err)
	}
	entryID, err := periodic.Register(cfg.Routing.SweepCron)
	if err != nil {
		return fmt.Errorf("failed to register fallback sweep %q: %w", cfg.Routing.SweepCron, err)
	}

	ctx, stop := signalCtx()
	defer stop()
	logger.Info(ctx, "Scheduler starting",
		zap.String("cron", cfg.Routing.SweepCron),
		zap.String("entry_id", entryID),
		zap.String("queue", cfg.Routing.SweepQueue),
	)

	var wg sync.WaitGroup
	var periodicErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := periodic.Run(ctx); err != nil {
			periodicErr = err
			stop()
		}
	}()

	worker.Run(ctx)
	stop()
	wg.Wait()

	application.Bus.Wait()
	if periodicErr != nil {
		return fmt.Errorf("periodic scheduler failed: %w", periodicErr)
	}
	return nil
}
