package prefs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/models"
)

type mockPreferenceStore struct {
	upserted []*models.UserPreferences
	err      error
}

func (m *mockPreferenceStore) All(ctx context.Context) ([]*models.UserPreferences, error) {
	return nil, nil
}

func (m *mockPreferenceStore) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, prefs)
	return nil
}

func validFilters() json.RawMessage {
	return json.RawMessage(`{
		"rent": {"min": 1000, "max": 3000},
		"condo": {"min": 0, "max": 800},
		"bedrooms": 2,
		"parkingSpots": 1,
		"locations": [
			{"id": "work", "kind": "specific", "target": "  Esplanada ", "maxTime": 20, "travelMode": "driving", "departureTime": "08:30"},
			{"id": "gym", "kind": "generic", "target": "academia", "maxTime": 10, "travelMode": "walking", "departureTime": "07:00"}
		]
	}`)
}

func TestSave_PersistsNormalizedProfile(t *testing.T) {
	st := &mockPreferenceStore{}
	svc := NewService(st, logger.NewTestLogger(t))

	saved, err := svc.Save(context.Background(), "user-1", validFilters())
	require.NoError(t, err)
	require.Len(t, st.upserted, 1)

	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, "Esplanada", saved.Locations[0].Target, "targets are trimmed")
	assert.Equal(t, "08:30", saved.Locations[0].DepartureTime)
	assert.Empty(t, saved.Locations[1].DepartureTime, "non-driving rules drop the departure time")
}

func TestSave_RejectsInvalidPayload(t *testing.T) {
	st := &mockPreferenceStore{}
	svc := NewService(st, logger.NewTestLogger(t))

	_, err := svc.Save(context.Background(), "user-1", json.RawMessage(`{"bedrooms": "two"}`))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePreferenceValidationFailed))
	assert.Empty(t, st.upserted)
}

func TestSave_RequiresUserID(t *testing.T) {
	svc := NewService(&mockPreferenceStore{}, logger.NewTestLogger(t))

	_, err := svc.Save(context.Background(), "  ", validFilters())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePreferenceValidationFailed))
}

func TestSave_StoreFailurePropagates(t *testing.T) {
	st := &mockPreferenceStore{err: apperrors.NewStoreUnavailable(nil)}
	svc := NewService(st, logger.NewTestLogger(t))

	_, err := svc.Save(context.Background(), "user-1", validFilters())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStoreUnavailable))
}
