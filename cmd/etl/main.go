package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/retail-etl/config"
	"github.com/ikkim/retail-etl/internal/app/repository"
	"github.com/ikkim/retail-etl/internal/artifact"
	"github.com/ikkim/retail-etl/internal/db"
	"github.com/ikkim/retail-etl/internal/fetch"
	"github.com/ikkim/retail-etl/internal/pipeline"
	"github.com/ikkim/retail-etl/internal/scheduler"
	"github.com/ikkim/retail-etl/internal/storage"
	"github.com/ikkim/retail-etl/pkg/logger"
)

func main() {
	stage := flag.String("stage", "all", "pipeline stage to run: extract, transform, load or all")
	daemon := flag.Bool("daemon", false, "run on the configured cron schedule instead of once")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting retail ETL", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"stage":       *stage,
		"daemon":      *daemon,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize fetch client
	client, err := fetch.NewClient(fetch.Config{
		BaseURL: cfg.API.BaseURL,
		Limit:   cfg.API.Limit,
		Skip:    cfg.API.Skip,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create order API client", err)
	}

	// Wire the pipeline
	store := artifact.NewStore(cfg.Data.Dir)
	salesRepo := repository.NewSalesRepository(db.GetDB())
	analyticsRepo := repository.NewAnalyticsRepository(db.GetDB())
	metrics := pipeline.NewMetrics()

	opts := []pipeline.Option{}
	if cfg.S3.Enabled {
		opts = append(opts, pipeline.WithUploader(storage.NewS3Storage(cfg.S3)))
	}

	p := pipeline.New(client, store, salesRepo, analyticsRepo, metrics, cfg.Pipeline, opts...)

	if *daemon {
		runDaemon(p, metrics, cfg)
		return
	}

	ctx := context.Background()
	if *stage == "all" {
		err = p.Run(ctx)
	} else {
		err = p.RunStage(ctx, *stage)
	}
	if err != nil {
		logger.Fatal("Pipeline failed", err, map[string]interface{}{
			"stage": *stage,
		})
	}

	logger.Info("Pipeline finished", map[string]interface{}{
		"stage": *stage,
	})
}

// runDaemon runs the pipeline on the configured cron schedule and
// serves prometheus metrics until interrupted.
func runDaemon(p *pipeline.Pipeline, metrics *pipeline.Metrics, cfg *config.Config) {
	sched := scheduler.NewETLScheduler(p, cfg.Schedule.CronSpec)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer sched.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.MetricsPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		logger.Info("Metrics endpoint listening", map[string]interface{}{
			"address": addr,
		})
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics endpoint stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
}
