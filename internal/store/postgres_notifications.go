package store

import (
	"context"
	"database/sql"
	"encoding/json"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/models"

	"github.com/google/uuid"
)

// PostgresNotificationStore implements NotificationStore. The
// (user_id, listing_id) unique index is the dedup mechanism: the insert is
// attempted unconditionally and a conflict is reported as DUPLICATE_ENQUEUE.
type PostgresNotificationStore struct {
	db *sql.DB
}

func NewPostgresNotificationStore(db *sql.DB) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

func (s *PostgresNotificationStore) CreatePending(ctx context.Context, userID, listingID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications_queue (id, user_id, listing_id, status)
		VALUES ($1, $2, $3, 'pending')`,
		uuid.New().String(), userID, listingID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateEnqueue(userID, listingID)
		}
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// A record left in processing by a crashed dispatcher becomes claimable
// again once its claim is older than this window.
const staleClaimWindow = "15 minutes"

const claimBatchQuery = `
	WITH claimable AS (
		SELECT id FROM notifications_queue
		WHERE status = 'pending'
		   OR (status = 'failed' AND attempts < $2)
		   OR (status = 'processing' AND updated_at < now() - interval '` + staleClaimWindow + `')
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	), claimed AS (
		UPDATE notifications_queue n
		SET status = 'processing', attempts = n.attempts + 1, updated_at = now()
		FROM claimable c
		WHERE n.id = c.id
		RETURNING n.id, n.user_id, n.listing_id, n.attempts, n.created_at, n.updated_at
	)
	SELECT cl.id, cl.user_id, cl.listing_id, cl.attempts, cl.created_at, cl.updated_at,
	       l.id, l.kind, l.street, l.neighborhood, l.city,
	       l.bedrooms, l.suites, l.parking_spots, l.area,
	       l.rent, l.condo_fee, l.description, l.url,
	       l.latitude, l.longitude, l.images, l.created_at,
	       p.phone_number, p.email
	FROM claimed cl
	LEFT JOIN listings l ON l.id = cl.listing_id
	LEFT JOIN user_profiles p ON p.user_id = cl.user_id`

func (s *PostgresNotificationStore) ClaimBatch(ctx context.Context, limit, maxAttempts int) ([]*PendingNotification, error) {
	rows, err := s.db.QueryContext(ctx, claimBatchQuery, limit, maxAttempts)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer rows.Close()

	var batch []*PendingNotification
	for rows.Next() {
		item, err := scanPendingNotification(rows)
		if err != nil {
			return nil, err
		}
		batch = append(batch, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return batch, nil
}

func scanPendingNotification(row rowScanner) (*PendingNotification, error) {
	var (
		n models.Notification

		listingID    sql.NullString
		kind         sql.NullString
		street       sql.NullString
		neighborhood sql.NullString
		city         sql.NullString
		bedrooms     sql.NullInt64
		suites       sql.NullInt64
		parking      sql.NullInt64
		area         sql.NullFloat64
		rent         sql.NullFloat64
		condoFee     sql.NullFloat64
		description  sql.NullString
		urlField     sql.NullString
		latitude     sql.NullFloat64
		longitude    sql.NullFloat64
		images       []byte
		createdAt    sql.NullTime

		phone sql.NullString
		email sql.NullString
	)

	err := row.Scan(
		&n.ID, &n.UserID, &n.ListingID, &n.Attempts, &n.CreatedAt, &n.UpdatedAt,
		&listingID, &kind, &street, &neighborhood, &city,
		&bedrooms, &suites, &parking, &area,
		&rent, &condoFee, &description, &urlField,
		&latitude, &longitude, &images, &createdAt,
		&phone, &email,
	)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	n.Status = models.StatusProcessing

	item := &PendingNotification{
		Notification: n,
		PhoneNumber:  phone.String,
		Email:        email.String,
	}

	if listingID.Valid {
		listing := &models.Listing{
			ID:           listingID.String,
			Kind:         kind.String,
			Street:       street.String,
			Neighborhood: neighborhood.String,
			City:         city.String,
			Bedrooms:     int(bedrooms.Int64),
			Suites:       int(suites.Int64),
			ParkingSpots: int(parking.Int64),
			Area:         area.Float64,
			Rent:         rent.Float64,
			CondoFee:     condoFee.Float64,
			Description:  description.String,
			URL:          urlField.String,
			CreatedAt:    createdAt.Time,
		}
		if latitude.Valid && longitude.Valid {
			listing.SetCoordinates(models.Coordinates{Lat: latitude.Float64, Lng: longitude.Float64})
		}
		if len(images) > 0 {
			_ = json.Unmarshal(images, &listing.Images)
		}
		item.Listing = listing
	}

	return item, nil
}

func (s *PostgresNotificationStore) MarkSent(ctx context.Context, id string) error {
	return s.finish(ctx, id, models.StatusSent)
}

func (s *PostgresNotificationStore) MarkFailed(ctx context.Context, id string) error {
	return s.finish(ctx, id, models.StatusFailed)
}

// finish only touches processing records, so a terminal status can never be
// overwritten by a stale dispatcher.
func (s *PostgresNotificationStore) finish(ctx context.Context, id string, status models.NotificationStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications_queue
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'processing'`,
		id, string(status),
	)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}
