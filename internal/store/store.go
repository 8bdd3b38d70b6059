// Package store defines the logical persistence contracts of the pipeline
// and their PostgreSQL implementations.
package store

import (
	"context"

	"vigia/internal/models"
)

// ListingStore persists scraped listings.
type ListingStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, listing *models.Listing) error
	FilterByNumeric(ctx context.Context, prefs *models.UserPreferences) ([]*models.Listing, error)
}

// PreferenceStore holds one active profile per user; Upsert replaces the
// previous filters.
type PreferenceStore interface {
	All(ctx context.Context) ([]*models.UserPreferences, error)
	Upsert(ctx context.Context, prefs *models.UserPreferences) error
}

// PendingNotification is a claimed notification joined with the data needed
// to deliver it. Listing is nil and PhoneNumber empty when the joined rows
// are missing.
type PendingNotification struct {
	models.Notification
	Listing     *models.Listing
	PhoneNumber string
	Email       string
}

// NotificationStore enforces the at-most-one-record-per-pair invariant and
// the status state machine.
type NotificationStore interface {
	// CreatePending inserts a pending record for the pair. A uniqueness
	// violation surfaces as a DUPLICATE_ENQUEUE pipeline error; callers
	// treat it as the expected already-queued outcome.
	CreatePending(ctx context.Context, userID, listingID string) error

	// ClaimBatch atomically moves up to limit claimable records to
	// processing and returns them joined with listing and contact data.
	// Records are claimable when pending, or failed with fewer attempts
	// than maxAttempts (the configurable retry policy; maxAttempts=1
	// means failed records are never revisited).
	ClaimBatch(ctx context.Context, limit, maxAttempts int) ([]*PendingNotification, error)

	// MarkSent and MarkFailed finish a processing record. They never touch
	// a record that is not in processing, keeping terminal states final.
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}
