// cmd/pipeline-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"candidate-pipeline/internal/api"
	"candidate-pipeline/internal/common/aws"
	"candidate-pipeline/internal/common/config"
	"candidate-pipeline/internal/common/database"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/common/observability"
	"candidate-pipeline/internal/evaluation"
	"candidate-pipeline/internal/extract"
	"candidate-pipeline/internal/intake"
	"candidate-pipeline/internal/notify"
	"candidate-pipeline/internal/pipeline"
	"candidate-pipeline/internal/scoring"
	"candidate-pipeline/internal/search"
	"candidate-pipeline/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pipeline server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (only when search is enabled) ---
	var indexer *search.Indexer
	if cfg.Search.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = search.NewIndexer(esClient.Client, cfg.Search.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Stores ---
	applicants := store.NewApplicantStore(pg.DB)
	assessments := store.NewAssessmentStore(pg.DB)
	notifications := store.NewNotificationStore(pg.DB)
	roles := store.NewRoleStore(pg.DB)

	// --- Notification clients ---
	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(notify.Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		FromEmail:    cfg.Notifications.Email.FromEmail,
	}, sesClient, snsClient, notifications, log)

	// --- Scoring engine ---
	openaiCfg := openai.DefaultConfig(cfg.Scoring.APIKey)
	if cfg.Scoring.BaseURL != "" {
		openaiCfg.BaseURL = cfg.Scoring.BaseURL
	}
	scorer := scoring.NewEngine(scoring.Config{
		Model:          cfg.Scoring.Model,
		Temperature:    cfg.Scoring.Temperature,
		Timeout:        config.GetDuration(cfg.Scoring.Timeout),
		MaxRetries:     cfg.Scoring.MaxRetries,
		TargetInsights: cfg.Scoring.TargetInsight,
	}, openai.NewClientWithConfig(openaiCfg), log)

	// --- Background pipeline ---
	processor := pipeline.NewAssessmentProcessor(scorer, assessments, roles, log)
	pool := pipeline.NewPool(
		cfg.Pipeline.Workers,
		cfg.Pipeline.QueueSize,
		config.GetDuration(cfg.Pipeline.TaskTimeout),
		obs, log,
	)
	pool.Start()

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	sweeper := pipeline.NewSweeper(assessments, processor, pool,
		config.GetDuration(cfg.Pipeline.SweepInterval),
		config.GetDuration(cfg.Pipeline.SweepMaxAge),
		log,
	)
	go sweeper.Run(sweepCtx)

	// --- Intake and evaluation ---
	extractor := extract.New(cfg.Intake.MinResumeChars)
	orchestrator := intake.NewOrchestrator(
		applicants, assessments, roles, extractor,
		processor, dispatcher, indexerOrNil(indexer), pool, log,
	)

	runStore := evaluation.NewRunStore(redis.Client, config.GetDuration(cfg.Evaluation.ResultTTL))
	evaluator := evaluation.NewEngine(applicants, assessments, roles, runStore, log)

	// --- HTTP server ---
	handler := api.NewHandler(
		orchestrator, evaluator, assessments, notifications,
		applicants, roles, searcherOrNil(indexer), log,
	)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	cancelSweep()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("task pool shutdown incomplete", zap.Error(err))
	}

	zapLog.Info("Pipeline server stopped gracefully")
}

// indexerOrNil keeps the intake indexer interface nil when search is off; a
// typed nil pointer would defeat the nil check.
func indexerOrNil(ix *search.Indexer) intake.Indexer {
	if ix == nil {
		return nil
	}
	return ix
}

func searcherOrNil(ix *search.Indexer) api.Searcher {
	if ix == nil {
		return nil
	}
	return ix
}
