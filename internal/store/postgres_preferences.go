package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/models"
)

// PostgresPreferenceStore stores the filter payload as JSONB, one active
// profile per user.
type PostgresPreferenceStore struct {
	db *sql.DB
}

func NewPostgresPreferenceStore(db *sql.DB) *PostgresPreferenceStore {
	return &PostgresPreferenceStore{db: db}
}

func (s *PostgresPreferenceStore) All(ctx context.Context) ([]*models.UserPreferences, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, filters FROM preferences`)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	defer rows.Close()

	var profiles []*models.UserPreferences
	for rows.Next() {
		var (
			userID  string
			filters []byte
		)
		if err := rows.Scan(&userID, &filters); err != nil {
			return nil, apperrors.NewStoreUnavailable(err)
		}

		var prefs models.UserPreferences
		if err := json.Unmarshal(filters, &prefs); err != nil {
			return nil, fmt.Errorf("unmarshal filters for user %s: %w", userID, err)
		}
		prefs.UserID = userID
		profiles = append(profiles, &prefs)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return profiles, nil
}

func (s *PostgresPreferenceStore) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	filters, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, filters)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET filters = EXCLUDED.filters, updated_at = now()`,
		prefs.UserID, filters,
	)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}
