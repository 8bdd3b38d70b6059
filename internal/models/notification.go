package models

import "time"

// NotificationStatus is the delivery state of a queued notification.
//
// pending is the initial state. A dispatcher claims a record by moving it to
// processing, then records exactly one terminal transition to sent or
// failed. Terminal states are never left.
type NotificationStatus string

const (
	StatusPending    NotificationStatus = "pending"
	StatusProcessing NotificationStatus = "processing"
	StatusSent       NotificationStatus = "sent"
	StatusFailed     NotificationStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s NotificationStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Notification is a queued delivery for a (user, listing) pair. At most one
// record ever exists per pair, enforced by a unique index rather than a
// business check.
type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	ListingID string             `json:"listingId"`
	Status    NotificationStatus `json:"status"`
	Attempts  int                `json:"attempts"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
