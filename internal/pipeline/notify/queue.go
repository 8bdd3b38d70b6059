// Package notify queues notifications for matched pairs and drains them
// through the delivery bridge.
package notify

import (
	"context"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/store"
)

// Queue performs the deduplicated enqueue. The contract is insert-if-absent:
// a conflict on the (user, listing) unique index is the documented no-op
// outcome, independent of how the underlying store signals it.
type Queue struct {
	store  store.NotificationStore
	logger logger.Logger
}

func NewQueue(s store.NotificationStore, log logger.Logger) *Queue {
	return &Queue{
		store:  s,
		logger: log.WithFields(map[string]interface{}{"component": "notify-queue"}),
	}
}

// Enqueue inserts a pending notification for the pair. It returns true when
// a new record was created and false when the pair was already queued or
// notified.
func (q *Queue) Enqueue(ctx context.Context, userID, listingID string) (bool, error) {
	err := q.store.CreatePending(ctx, userID, listingID)
	if err == nil {
		return true, nil
	}
	if apperrors.HasCode(err, apperrors.ErrCodeDuplicateEnqueue) {
		q.logger.Debug("pair already queued", map[string]interface{}{
			"userId":    userID,
			"listingId": listingID,
		})
		return false, nil
	}
	return false, err
}
