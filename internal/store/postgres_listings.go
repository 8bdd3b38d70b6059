package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/models"

	"github.com/lib/pq"
)

// PostgresListingStore implements ListingStore over PostgreSQL.
type PostgresListingStore struct {
	db *sql.DB
}

func NewPostgresListingStore(db *sql.DB) *PostgresListingStore {
	return &PostgresListingStore{db: db}
}

func (s *PostgresListingStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStoreUnavailable(err)
	}
	return exists, nil
}

func (s *PostgresListingStore) Insert(ctx context.Context, l *models.Listing) error {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO listings (
			id, kind, street, neighborhood, city,
			bedrooms, suites, parking_spots, area,
			rent, condo_fee, description, url,
			latitude, longitude, images
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		l.ID, l.Kind, l.Street, l.Neighborhood, l.City,
		l.Bedrooms, l.Suites, l.ParkingSpots, l.Area,
		l.Rent, l.CondoFee, l.Description, l.URL,
		l.Latitude, l.Longitude, images,
	)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

func (s *PostgresListingStore) FilterByNumeric(ctx context.Context, prefs *models.UserPreferences) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, street, neighborhood, city,
		       bedrooms, suites, parking_spots, area,
		       rent, condo_fee, description, url,
		       latitude, longitude, images, created_at
		FROM listings
		WHERE rent BETWEEN $1 AND $2
		  AND condo_fee BETWEEN $3 AND $4
		  AND bedrooms >= $5
		  AND parking_spots >= $6
		ORDER BY created_at DESC`,
		prefs.Rent.Min, prefs.Rent.Max,
		prefs.Condo.Min, prefs.Condo.Max,
		prefs.Bedrooms, prefs.ParkingSpots,
	)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return listings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		l      models.Listing
		images []byte
	)
	err := row.Scan(
		&l.ID, &l.Kind, &l.Street, &l.Neighborhood, &l.City,
		&l.Bedrooms, &l.Suites, &l.ParkingSpots, &l.Area,
		&l.Rent, &l.CondoFee, &l.Description, &l.URL,
		&l.Latitude, &l.Longitude, &images, &l.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if len(images) > 0 {
		_ = json.Unmarshal(images, &l.Images)
	}
	return &l, nil
}

// isUniqueViolation reports whether err is the Postgres unique_violation
// error class.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
