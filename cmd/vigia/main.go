// cmd/vigia/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vigia/internal/bridge"
	"vigia/internal/cache"
	"vigia/internal/common/config"
	"vigia/internal/common/database"
	"vigia/internal/common/logger"
	"vigia/internal/common/observability"
	"vigia/internal/maps"
	"vigia/internal/pipeline"
	"vigia/internal/pipeline/geocode"
	"vigia/internal/pipeline/ingest"
	"vigia/internal/pipeline/match"
	"vigia/internal/pipeline/notify"
	"vigia/internal/pipeline/prefs"
	"vigia/internal/pipeline/rules"
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
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting vigia...",
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
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	listingStore := newListingStore(pg)
	preferenceStore := newPreferenceStore(pg)
	notificationStore := newNotificationStore(pg)

	// --- External service clients ---
	mapsClient := maps.NewClient(
		cfg.Maps.BaseURL,
		cfg.Maps.APIKey,
		config.GetDuration(cfg.Maps.Timeout),
		log,
	)
	bridgeClient := bridge.NewClient(
		cfg.Bridge.URL,
		config.GetDuration(cfg.Bridge.Timeout),
		log,
	)

	// --- Pipeline stages ---
	geocodeCache := cache.NewRedis(rdb.Client, "vigia:")
	resolver := geocode.NewResolver(
		mapsClient,
		geocodeCache,
		time.Duration(cfg.Maps.GeocodeCacheTTL)*time.Minute,
		log,
	)
	evaluator := rules.NewEvaluator(mapsClient, log)
	matcher := match.NewMatcher(evaluator, resolver, log)
	queue := notify.NewQueue(notificationStore, log)
	runner := match.NewRunner(
		matcher,
		preferenceStore,
		queue,
		cfg.Matching.PoolSize,
		config.GetDuration(cfg.Matching.CallInterval),
		log,
	)
	searcher := match.NewSearcher(listingStore, matcher, log)
	prefService := prefs.NewService(preferenceStore, log)

	var emailCopier notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		copier, err := notify.NewEmailCopier(
			ctx,
			cfg.Notifications.Email.AWSRegion,
			cfg.Notifications.Email.FromEmail,
			log,
		)
		if err != nil {
			zapLog.Fatal("email copier init failed", zap.Error(err))
		}
		emailCopier = copier
	}

	dispatcher := notify.NewDispatcher(
		notify.DispatcherConfig{
			BatchSize:   cfg.Notifications.BatchSize,
			MaxAttempts: cfg.Notifications.MaxAttempts,
		},
		notificationStore, bridgeClient, emailCopier, log,
	)

	fetcher := ingest.NewChromeFetcher(config.GetDuration(cfg.Scraper.PageTimeout), log)
	defer fetcher.Close()

	scraper := ingest.NewScraper(
		ingest.ScraperConfig{
			SiteBaseURL:  cfg.Scraper.SiteBaseURL,
			ListingPath:  cfg.Scraper.ListingPath,
			MaxPages:     cfg.Scraper.MaxPages,
			RequestDelay: config.GetDuration(cfg.Scraper.RequestDelay),
		},
		fetcher, listingStore, log,
	)

	pipe := pipeline.New(scraper, runner, dispatcher, obs, log)

	// --- Schedule ---
	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		zapLog.Fatal("invalid schedule timezone", zap.Error(err))
	}
	scheduler := cron.New(cron.WithLocation(location))
	_, err = scheduler.AddFunc(cfg.Schedule.Cron, func() {
		pipe.RunCycle(ctx)
	})
	if err != nil {
		zapLog.Fatal("invalid cron expression", zap.Error(err))
	}
	scheduler.Start()
	zapLog.Info("Cycle scheduled",
		zap.String("cron", cfg.Schedule.Cron),
		zap.String("timezone", cfg.Schedule.Timezone),
	)

	// --- API & Metrics Server ---
	go func() {
		mux := http.NewServeMux()

		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status := "ready"
			code := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.Handle("/metrics", promhttp.Handler())

		api := newAPI(pipe, prefService, searcher, log)
		mux.HandleFunc("/api/scraper/run", api.triggerCycle)
		mux.HandleFunc("/api/preferences", api.savePreferences)
		mux.HandleFunc("/api/listings/search", api.searchListings)

		zapLog.Info("API/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := http.ListenAndServe(cfg.Server.Address, mux); err != nil {
			zapLog.Error("API/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping scheduler...")
	stopCtx := scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	select {
	case <-stopCtx.Done():
	case <-shutdownCtx.Done():
		zapLog.Warn("Timed out waiting for running jobs")
	}

	zapLog.Info("Vigia stopped gracefully")
}
