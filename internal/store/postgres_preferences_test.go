package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigia/internal/models"
)

func TestPreferencesAll(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewPostgresPreferenceStore(db)

	filters := []byte(`{
		"rent": {"min": 1000, "max": 3000},
		"condo": {"min": 0, "max": 800},
		"bedrooms": 2,
		"parkingSpots": 1,
		"locations": [{"id": "work", "kind": "specific", "target": "Esplanada", "maxTime": 20, "travelMode": "driving"}]
	}`)

	mock.ExpectQuery("SELECT user_id, filters FROM preferences").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "filters"}).
			AddRow("user-1", filters))

	profiles, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, 3000.0, p.Rent.Max)
	require.Len(t, p.Locations, 1)
	assert.Equal(t, models.RuleSpecific, p.Locations[0].Kind)
}

func TestPreferencesAll_MalformedFiltersFail(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewPostgresPreferenceStore(db)

	mock.ExpectQuery("SELECT user_id, filters FROM preferences").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "filters"}).
			AddRow("user-1", []byte(`{broken`)))

	_, err := s.All(context.Background())
	assert.Error(t, err)
}

func TestPreferencesUpsert(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewPostgresPreferenceStore(db)

	prefs := &models.UserPreferences{
		UserID:   "user-1",
		Rent:     models.PriceRange{Min: 1000, Max: 3000},
		Condo:    models.PriceRange{Min: 0, Max: 800},
		Bedrooms: 2,
	}

	mock.ExpectExec("INSERT INTO preferences").
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(context.Background(), prefs))
	assert.NoError(t, mock.ExpectationsWereMet())
}
