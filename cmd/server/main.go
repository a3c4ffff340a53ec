package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"leadrouter.backend/internal/app"
	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/infrastructure/datasources/postgres"
	"leadrouter.backend/internal/infrastructure/jobs"
	"leadrouter.backend/pkg/jwt"
	"leadrouter.backend/pkg/logger"
	"leadrouter.backend/pkg/redis"
	"leadrouter.backend/pkg/validator"
)

const shutdownTimeout = 15 * time.Second

var (
	loadDotenv       = godotenv.Load
	loadCfg          = config.Load
	initLog          = logger.Init
	initRedis        = redis.Init
	openDB           = postgres.Open
	migrate          = postgres.Migrate
	newChargeGateway = app.NewChargeGateway
	runServer        = func(srv *http.Server) error { return srv.ListenAndServe() }
	signalCtx        = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	bg := context.Background()
	logger.Info(bg, "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis backs idempotency replay and the sweep lock; both degrade without it
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			logger.Warn(bg, "Redis unavailable, continuing without it", zap.Error(err))
			redis.SetClient(nil)
		} else {
			logger.Info(bg, "Redis initialized")
		}
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, sqlDB, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(bg, "Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if err := validator.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	application := app.New(cfg, db, newChargeGateway(cfg.Stripe))
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	r := newRouter(cfg.Server.AllowedOrigins, newRouteDeps(application, jwtService, sqlDB))

	ctx, stop := signalCtx()
	defer stop()

	var sweepJob *jobs.FallbackSweepJob
	if cfg.Routing.SweepMode == config.SweepModeInProcess {
		sweepJob = jobs.NewFallbackSweepJob(application.Routing, cfg.Routing.SweepInterval)
		go sweepJob.Start(ctx)
	} else {
		logger.Info(bg, "Fallback sweep delegated to scheduler", zap.String("mode", cfg.Routing.SweepMode))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info(bg, "Shutting down server")
		if sweepJob != nil {
			sweepJob.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(bg, "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(bg, "Lead router starting", zap.String("port", cfg.Server.Port))
	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// let in-flight notifications finish
	application.Bus.Wait()
	return nil
}
