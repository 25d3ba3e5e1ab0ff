package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/app/config"
	appservices "github.com/shotbox/shotbox/internal/app/services"
	"github.com/shotbox/shotbox/internal/infrastructure/database"
	"github.com/shotbox/shotbox/pkg/logger"
)

// WorkerConfig holds configuration for the OCR backfill worker
type WorkerConfig struct {
	ConcurrentJobs int           `json:"concurrent_jobs"`
	PollInterval   time.Duration `json:"poll_interval"`
	BatchSize      int           `json:"batch_size"`
}

// OcrProcessor drains the backlog of screenshots that were uploaded
// but never OCR-processed.
type OcrProcessor struct {
	config         WorkerConfig
	serviceManager *appservices.ServiceManager
	logger         *logger.Logger
	shutdown       chan os.Signal
	wg             sync.WaitGroup
}

func main() {
	log := logger.NewFromEnv()

	log.Info("Starting Shotbox OCR worker")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if !cfg.OCR.Enabled {
		log.Info("OCR is disabled, worker has nothing to do")
		return
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	serviceManager, err := appservices.NewServiceManager(cfg, db, log)
	if err != nil {
		log.Error("Failed to initialize service manager", "error", err)
		os.Exit(1)
	}
	defer serviceManager.Close()

	if err := serviceManager.HealthCheck(); err != nil {
		log.Error("Service health check failed", "error", err)
		os.Exit(1)
	}

	workerConfig := WorkerConfig{
		ConcurrentJobs: getIntEnv("WORKER_CONCURRENT_JOBS", 4),
		PollInterval:   getDurationEnv("WORKER_POLL_INTERVAL", 10*time.Second),
		BatchSize:      getIntEnv("WORKER_BATCH_SIZE", 20),
	}

	processor := &OcrProcessor{
		config:         workerConfig,
		serviceManager: serviceManager,
		logger:         log,
		shutdown:       make(chan os.Signal, 1),
	}

	signal.Notify(processor.shutdown, syscall.SIGINT, syscall.SIGTERM)

	log.Info("OCR worker started",
		"concurrent_jobs", workerConfig.ConcurrentJobs,
		"poll_interval", workerConfig.PollInterval,
		"batch_size", workerConfig.BatchSize)

	processor.Start()
}

// Start begins polling for unprocessed screenshots
func (p *OcrProcessor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make(chan uuid.UUID)

	for i := 0; i < p.config.ConcurrentJobs; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i, jobs)
	}

	p.wg.Add(1)
	go p.pollLoop(ctx, jobs)

	<-p.shutdown
	p.logger.Info("Shutdown signal received, stopping workers...")

	cancel()
	p.wg.Wait()
	p.logger.Info("All workers stopped gracefully")
}

// pollLoop fetches batches of unprocessed screenshots and feeds them
// to the workers.
func (p *OcrProcessor) pollLoop(ctx context.Context, jobs chan<- uuid.UUID) {
	defer p.wg.Done()
	defer close(jobs)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			screenshots, err := p.serviceManager.Repositories.ScreenshotRepo.ListUnprocessed(ctx, p.config.BatchSize)
			if err != nil {
				p.logger.Error("Failed to list unprocessed screenshots", "error", err)
				continue
			}

			for _, screenshot := range screenshots {
				select {
				case <-ctx.Done():
					return
				case jobs <- screenshot.ID:
				}
			}
		}
	}
}

// workerLoop runs OCR for each screenshot id it receives.
func (p *OcrProcessor) workerLoop(ctx context.Context, workerID int, jobs <-chan uuid.UUID) {
	defer p.wg.Done()

	p.logger.Info("Worker started", "worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Worker stopping", "worker_id", workerID)
			return
		case screenshotID, ok := <-jobs:
			if !ok {
				return
			}

			// force=false: a screenshot processed by a concurrent
			// trigger is skipped, not redone.
			if _, err := p.serviceManager.OcrService.Trigger(ctx, screenshotID, false); err != nil {
				p.logger.Error("OCR run failed",
					"worker_id", workerID,
					"screenshot_id", screenshotID,
					"error", err)
				continue
			}

			p.logger.Info("OCR run completed",
				"worker_id", workerID,
				"screenshot_id", screenshotID)
		}
	}
}

// Environment variable helpers
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
