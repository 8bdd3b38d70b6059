package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigia/internal/common/logger"
	"vigia/internal/models"
	"vigia/internal/pipeline/rules"
)

type mockListingSource struct {
	listings []*models.Listing
	err      error
}

func (m *mockListingSource) FilterByNumeric(ctx context.Context, prefs *models.UserPreferences) ([]*models.Listing, error) {
	return m.listings, m.err
}

func TestSearch_ReturnsCompatibleListingsWithDiagnostics(t *testing.T) {
	near := testListing()
	near.ID = "near"
	far := testListing()
	far.ID = "far"

	prefs := testPrefs()
	prefs.Locations = []models.LocationRule{
		{ID: "work", Kind: models.RuleSpecific, Target: "Esplanada", MaxTime: 20, TravelMode: models.ModeDriving},
	}

	evaluator := &mockEvaluator{
		evaluateFunc: func(ctx context.Context, origin models.Coordinates, rule models.LocationRule) (*rules.Result, error) {
			return &rules.Result{DurationMinutes: 15, Passed: true}, nil
		},
	}

	source := &mockListingSource{listings: []*models.Listing{near, far}}
	searcher := NewSearcher(source, NewMatcher(evaluator, unusedResolver(t), logger.NewTestLogger(t)), logger.NewTestLogger(t))

	results, err := searcher.Search(context.Background(), prefs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Listing.ID)
	require.Len(t, results[0].MatchedRules, 1)
	assert.Equal(t, 15, results[0].MatchedRules[0].ActualDuration)
}

func TestSearch_FailedRulesExcludeListing(t *testing.T) {
	prefs := testPrefs()
	prefs.Locations = []models.LocationRule{
		{ID: "work", Kind: models.RuleSpecific, Target: "Esplanada", MaxTime: 10, TravelMode: models.ModeDriving},
	}

	evaluator := &mockEvaluator{
		evaluateFunc: func(ctx context.Context, origin models.Coordinates, rule models.LocationRule) (*rules.Result, error) {
			return &rules.Result{DurationMinutes: 25, Passed: false}, nil
		},
	}

	source := &mockListingSource{listings: []*models.Listing{testListing()}}
	searcher := NewSearcher(source, NewMatcher(evaluator, unusedResolver(t), logger.NewTestLogger(t)), logger.NewTestLogger(t))

	results, err := searcher.Search(context.Background(), prefs)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_SourceFailurePropagates(t *testing.T) {
	source := &mockListingSource{err: errors.New("db down")}
	searcher := NewSearcher(source, NewMatcher(passingEvaluator(10), unusedResolver(t), logger.NewTestLogger(t)), logger.NewTestLogger(t))

	_, err := searcher.Search(context.Background(), testPrefs())
	assert.Error(t, err)
}
