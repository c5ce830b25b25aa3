package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"renditionmaker/assets"
	"renditionmaker/config"
	"renditionmaker/credentials"
	"renditionmaker/encoder"
	"renditionmaker/failures"
	"renditionmaker/job"
	"renditionmaker/logger"
	"renditionmaker/models"
	"renditionmaker/routes"
	"renditionmaker/success"
	taskqueue "renditionmaker/taskQueue"
	"renditionmaker/utils"
	writerbackends "renditionmaker/writerBackends"
)

func main() {
	if err := config.Load(""); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(config.GetLogFile(), true); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()
	logger.SetLevel(logger.ParseLevel(config.GetLogLevel()))

	logger.Info("Starting rendition server initialization")

	if err := os.MkdirAll(config.GetDataDir(), 0755); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}

	logger.Debug("Initializing credentials database")
	if err := credentials.OpenDB(config.GetCredentialsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize credentials store: %v", err)
	}
	defer credentials.CloseDB()

	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer failures.Close()

	logger.Debug("Initializing success database")
	if err := success.Init(config.GetSuccessDBPath()); err != nil {
		logger.Fatalf("Failed to initialize success store: %v", err)
	}
	defer success.Close()

	logger.Debug("Initializing asset database")
	store, err := assets.Open(config.GetAssetsDBPath())
	if err != nil {
		logger.Fatalf("Failed to initialize asset store: %v", err)
	}
	defer store.Close()

	logger.Debug("Initializing work queue")
	queue, err := taskqueue.OpenWorkQueue(config.GetWorkQueueDBPath())
	if err != nil {
		logger.Fatalf("Failed to initialize work queue: %v", err)
	}
	defer queue.Close()
	logger.Info("Databases initialized successfully")

	encoder.RegisterDefaults()

	destinations, err := config.GetDestinations()
	if err != nil {
		logger.Fatalf("Invalid publish.destinations: %v", err)
	}
	var publisher encoder.Publisher
	if len(destinations) > 0 {
		publisher = writerbackends.NewPublisher(destinations, credentials.GetCredentials)
		logger.Infof("Publishing renditions to %d destination(s)", len(destinations))
	}

	generator := encoder.NewGenerator(store, publisher, config.GetRenditionsDir())
	planner := job.NewPlanner(generator, store, job.PlannerOptions{
		Concurrency:       config.GetPlannerConcurrency(),
		GenerationTimeout: config.GetGenerationTimeout(),
	})
	scheduler := job.NewScheduler(queue, job.NewProcessor(store, planner))

	logger.Info("Scanning work queue for unfinished items")
	if n, err := scheduler.Rescan(); err != nil {
		logger.Errorf("Failed to scan work queue: %v", err)
	} else {
		logger.Infof("Work queue scan completed: %d item(s) resumed", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// background workers touch the stores; they are joined before the
	// deferred closes run
	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		cleanupRoutine(ctx, config.GetRetention())
	}()
	go func() {
		defer workers.Done()
		scheduler.Run(ctx)
	}()

	if addr := config.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Errorf("Redis at %s is not reachable yet: %v", addr, err)
		}
		intake := taskqueue.NewRedisIntake(client, config.GetRedisQueue())
		workers.Add(1)
		go func() {
			defer workers.Done()
			intake.Run(ctx, func(item models.WorkItem) error {
				_, err := scheduler.Submit(item)
				return err
			})
		}()
	}

	var auth *utils.VerifyConfig
	if secret := config.GetJWTSecret(); secret != "" {
		auth = &utils.VerifyConfig{
			SecretKey:      []byte(secret),
			ExpectedIssuer: config.GetJWTIssuer(),
			ClockSkew:      time.Minute,
		}
	} else {
		logger.Warn("jwt.secret is empty; submissions are not authenticated")
	}

	mux := http.NewServeMux()
	routes.NewHandlers(scheduler, store, config.GetOriginalsDir(), auth).Register(mux)
	mux.Handle("/renditions/", http.StripPrefix("/renditions/", http.FileServer(http.Dir(config.GetDirectServeBaseDir()))))

	srv := &http.Server{
		Addr:              config.GetListenAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("Rendition server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("Server failed: %v", err)
	}

	stop()
	logger.Info("Waiting for background workers to finish")
	workers.Wait()
	logger.Info("Rendition server stopped")
}

// cleanupRoutine periodically removes success and failure records older than retention
func cleanupRoutine(ctx context.Context, retention time.Duration) {
	logger.Infof("Cleanup routine started - records older than %v are removed daily", retention)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			logger.Info("Running scheduled cleanup of old records")

			if err := success.CleanupOldRecords(retention); err != nil {
				logger.Errorf("Failed to cleanup old success records: %v", err)
			}
			if err := failures.CleanupOldRecords(retention); err != nil {
				logger.Errorf("Failed to cleanup old failure records: %v", err)
			}

			logger.Info("Scheduled cleanup completed")
		}
	}
}
