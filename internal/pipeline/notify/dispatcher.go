package notify

import (
	"context"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/common/metrics"
	"vigia/internal/models"
	"vigia/internal/store"
)

// BridgeSender delivers a rendered message to a phone number.
type BridgeSender interface {
	Send(ctx context.Context, recipient, message string) error
}

// EmailSender mirrors a delivered notification to email, best effort.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string)
}

type DispatcherConfig struct {
	BatchSize   int
	MaxAttempts int // 1 means failed records are never retried
}

// Dispatcher drains the notification queue in bounded batches. Each run
// claims records atomically (pending → processing), so overlapping runs
// never pick up the same record, then moves each claimed record to exactly
// one terminal state.
type Dispatcher struct {
	config DispatcherConfig
	store  store.NotificationStore
	bridge BridgeSender
	email  EmailSender // nil when the email copy channel is disabled
	logger logger.Logger
}

func NewDispatcher(cfg DispatcherConfig, s store.NotificationStore, bridge BridgeSender, email EmailSender, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config: cfg,
		store:  s,
		bridge: bridge,
		email:  email,
		logger: log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Dispatch processes one batch and returns the number of records that ended
// sent and failed. An error is returned only when the store itself is
// unavailable; per-notification failures are absorbed into the failed count.
func (d *Dispatcher) Dispatch(ctx context.Context) (sent, failed int, err error) {
	batch, err := d.store.ClaimBatch(ctx, d.config.BatchSize, d.config.MaxAttempts)
	if err != nil {
		return 0, 0, err
	}
	if len(batch) == 0 {
		d.logger.Info("no pending notifications", nil)
		return 0, 0, nil
	}

	d.logger.Info("dispatching notifications", map[string]interface{}{
		"count": len(batch),
	})

	for _, item := range batch {
		if d.deliver(ctx, item) {
			sent++
		} else {
			failed++
		}
	}

	return sent, failed, nil
}

// deliver moves one claimed record to its terminal state and reports
// whether it was sent.
func (d *Dispatcher) deliver(ctx context.Context, item *store.PendingNotification) bool {
	log := d.logger.WithFields(map[string]interface{}{
		"notificationId": item.ID,
		"userId":         item.UserID,
		"listingId":      item.ListingID,
	})

	if item.Listing == nil || item.PhoneNumber == "" {
		log.WithError(apperrors.NewIncompleteNotificationData(item.ID)).
			Error("incomplete notification data, marking as failed", nil)
		d.finish(ctx, item.ID, models.StatusFailed, log)
		return false
	}

	message := RenderMessage(item.Listing)

	if err := d.bridge.Send(ctx, item.PhoneNumber, message); err != nil {
		log.WithError(err).Error("delivery failed", nil)
		d.finish(ctx, item.ID, models.StatusFailed, log)
		return false
	}

	d.finish(ctx, item.ID, models.StatusSent, log)

	if d.email != nil {
		d.email.Send(ctx, item.Email, "Vigia Imóveis encontrou um imóvel", message)
	}
	return true
}

func (d *Dispatcher) finish(ctx context.Context, id string, status models.NotificationStatus, log logger.Logger) {
	var err error
	switch status {
	case models.StatusSent:
		err = d.store.MarkSent(ctx, id)
	default:
		err = d.store.MarkFailed(ctx, id)
	}
	if err != nil {
		log.WithError(err).Error("failed to record terminal status", map[string]interface{}{
			"status": string(status),
		})
		return
	}
	metrics.NotificationsDispatched.WithLabelValues(string(status)).Inc()
}
