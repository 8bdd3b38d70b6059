package match

import (
	"context"
	"sync/atomic"
	"time"

	"vigia/internal/common/logger"
	"vigia/internal/common/metrics"
	"vigia/internal/models"
)

// PreferenceSource yields every stored preference profile.
type PreferenceSource interface {
	All(ctx context.Context) ([]*models.UserPreferences, error)
}

// Enqueuer queues a notification for a matched (user, listing) pair. The
// returned bool is false when the pair was already queued.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID, listingID string) (bool, error)
}

// Runner matches a batch of new listings against all stored profiles and
// enqueues a notification per match.
type Runner struct {
	matcher     *Matcher
	preferences PreferenceSource
	queue       Enqueuer
	poolSize    int
	interval    time.Duration
	logger      logger.Logger
}

func NewRunner(matcher *Matcher, prefs PreferenceSource, queue Enqueuer, poolSize int, interval time.Duration, log logger.Logger) *Runner {
	return &Runner{
		matcher:     matcher,
		preferences: prefs,
		queue:       queue,
		poolSize:    poolSize,
		interval:    interval,
		logger:      log.WithFields(map[string]interface{}{"component": "match-runner"}),
	}
}

// Run processes listings × profiles with bounded concurrency and returns how
// many notifications were newly enqueued. Listings are parallelized; the
// profiles for one listing run sequentially so the lazy coordinate backfill
// has a single writer.
func (r *Runner) Run(ctx context.Context, listings []*models.Listing) (int, error) {
	if len(listings) == 0 {
		r.logger.Info("no new listings to match", nil)
		return 0, nil
	}

	profiles, err := r.preferences.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(profiles) == 0 {
		r.logger.Info("no preference profiles stored, skipping matching", nil)
		return 0, nil
	}

	r.logger.Info("matching started", map[string]interface{}{
		"listings": len(listings),
		"profiles": len(profiles),
	})

	var queued int64
	pool := NewWorkerPool(r.poolSize, r.interval)

	for _, listing := range listings {
		listing := listing
		pool.Submit(func() {
			for _, prefs := range profiles {
				result := r.matcher.Matches(ctx, listing, prefs)
				if !result.IsMatch {
					continue
				}

				metrics.MatchesFound.Inc()
				r.logger.Info("match found", map[string]interface{}{
					"listingId": listing.ID,
					"userId":    prefs.UserID,
				})

				inserted, err := r.queue.Enqueue(ctx, prefs.UserID, listing.ID)
				if err != nil {
					r.logger.Error("failed to enqueue notification", map[string]interface{}{
						"listingId": listing.ID,
						"userId":    prefs.UserID,
						"error":     err.Error(),
					})
					continue
				}
				if inserted {
					metrics.NotificationsEnqueued.Inc()
					atomic.AddInt64(&queued, 1)
				}
			}
		})
	}

	pool.Wait()

	r.logger.Info("matching finished", map[string]interface{}{
		"notificationsQueued": queued,
	})
	return int(atomic.LoadInt64(&queued)), nil
}
