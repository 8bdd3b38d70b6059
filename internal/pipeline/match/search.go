package match

import (
	"context"

	"vigia/internal/common/logger"
	"vigia/internal/models"
)

// FilteredListingSource narrows stored listings by the numeric filters of a
// profile; the location rules are applied afterwards in process.
type FilteredListingSource interface {
	FilterByNumeric(ctx context.Context, prefs *models.UserPreferences) ([]*models.Listing, error)
}

// SearchResult pairs a compatible listing with its rule diagnostics.
type SearchResult struct {
	Listing      *models.Listing      `json:"listing"`
	MatchedRules []models.MatchedRule `json:"matchedRules"`
}

// Searcher serves ad-hoc listing queries against a single profile, reusing
// the matcher for the location rules.
type Searcher struct {
	listings FilteredListingSource
	matcher  *Matcher
	logger   logger.Logger
}

func NewSearcher(listings FilteredListingSource, matcher *Matcher, log logger.Logger) *Searcher {
	return &Searcher{
		listings: listings,
		matcher:  matcher,
		logger:   log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

// Search returns the stored listings compatible with the given profile,
// newest first, with per-rule diagnostics attached.
func (s *Searcher) Search(ctx context.Context, prefs *models.UserPreferences) ([]SearchResult, error) {
	candidates, err := s.listings.FilterByNumeric(ctx, prefs)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, listing := range candidates {
		match := s.matcher.Matches(ctx, listing, prefs)
		if match.IsMatch {
			results = append(results, SearchResult{
				Listing:      listing,
				MatchedRules: match.MatchedRules,
			})
		}
	}

	s.logger.Info("search completed", map[string]interface{}{
		"candidates": len(candidates),
		"compatible": len(results),
	})
	return results, nil
}
