// Package pipeline chains ingestion, matching and dispatch into one cycle.
package pipeline

import (
	"context"
	"sync"
	"time"

	"vigia/internal/common/logger"
	"vigia/internal/common/metrics"
	"vigia/internal/common/observability"
	"vigia/internal/models"
)

// ListingSource discovers and persists new listings, returning the ones
// added during the pass.
type ListingSource interface {
	Scrape(ctx context.Context) ([]*models.Listing, error)
}

// MatchRunner matches new listings against all profiles and reports how many
// notifications it queued.
type MatchRunner interface {
	Run(ctx context.Context, listings []*models.Listing) (int, error)
}

// QueueDispatcher drains one batch of queued notifications.
type QueueDispatcher interface {
	Dispatch(ctx context.Context) (sent, failed int, err error)
}

// Pipeline runs the scrape → match → dispatch cycle. Stage failures are
// contained: a failed scrape still lets dispatch drain what earlier cycles
// queued, and a failed match run never blocks dispatch.
type Pipeline struct {
	scraper    ListingSource
	matcher    MatchRunner
	dispatcher QueueDispatcher
	obs        *observability.Observability
	logger     logger.Logger

	mu      sync.Mutex
	running bool
}

func New(scraper ListingSource, matcher MatchRunner, dispatcher QueueDispatcher, obs *observability.Observability, log logger.Logger) *Pipeline {
	return &Pipeline{
		scraper:    scraper,
		matcher:    matcher,
		dispatcher: dispatcher,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// RunCycle executes one full cycle. Concurrent invocations collapse: if a
// cycle is already running the call returns immediately.
func (p *Pipeline) RunCycle(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.logger.Warn("cycle already in progress, skipping", nil)
		return
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	start := time.Now()
	status := "success"

	p.logger.Info("cycle started", nil)

	listings, err := p.scraper.Scrape(ctx)
	if err != nil {
		status = "partial"
		p.logger.Error("scrape stage failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if len(listings) > 0 {
		if _, err := p.matcher.Run(ctx, listings); err != nil {
			status = "partial"
			p.logger.Error("match stage failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	sent, failed, err := p.dispatcher.Dispatch(ctx)
	if err != nil {
		status = "partial"
		p.logger.Error("dispatch stage failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	elapsed := time.Since(start)
	metrics.CycleDuration.Observe(elapsed.Seconds())
	if p.obs != nil {
		p.obs.RecordCycle(ctx, status)
		p.obs.RecordCycleDuration(ctx, elapsed, status)
	}

	p.logger.Info("cycle finished", map[string]interface{}{
		"status":      status,
		"newListings": len(listings),
		"sent":        sent,
		"failed":      failed,
		"duration":    elapsed.String(),
	})
}
