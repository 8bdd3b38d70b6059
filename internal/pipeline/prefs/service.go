// Package prefs exposes the preference write path: validate, normalize,
// persist.
package prefs

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/common/validation"
	"vigia/internal/models"
	"vigia/internal/store"
)

type Service struct {
	store  store.PreferenceStore
	logger logger.Logger
}

func NewService(s store.PreferenceStore, log logger.Logger) *Service {
	return &Service{
		store:  s,
		logger: log.WithFields(map[string]interface{}{"component": "prefs"}),
	}
}

// Save validates a raw filter document and upserts it as the user's active
// profile. The previous profile, if any, is replaced.
func (s *Service) Save(ctx context.Context, userID string, filters json.RawMessage) (*models.UserPreferences, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewPreferenceValidationFailed("userId is required")
	}

	if err := validation.ValidatePreferences(filters); err != nil {
		return nil, err
	}

	var prefs models.UserPreferences
	if err := json.Unmarshal(filters, &prefs); err != nil {
		return nil, apperrors.NewPreferenceValidationFailed(err.Error())
	}
	prefs.UserID = userID
	normalize(&prefs)

	if err := s.store.Upsert(ctx, &prefs); err != nil {
		return nil, err
	}

	s.logger.Info("preferences saved", map[string]interface{}{
		"userId":        userID,
		"locationRules": len(prefs.Locations),
	})
	return &prefs, nil
}

// normalize trims free-text fields and drops departure times on rules where
// routing ignores them (only driving rules honor a departure time).
func normalize(prefs *models.UserPreferences) {
	for i := range prefs.Locations {
		rule := &prefs.Locations[i]
		rule.Target = strings.TrimSpace(rule.Target)
		if rule.TravelMode != models.ModeDriving {
			rule.DepartureTime = ""
		}
	}
	for i, a := range prefs.Amenities {
		prefs.Amenities[i] = strings.TrimSpace(a)
	}
}
