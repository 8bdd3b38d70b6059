// Package match decides whether a listing satisfies a stored preference
// profile and drives the listings × profiles matching run.
package match

import (
	"context"

	"vigia/internal/common/logger"
	"vigia/internal/maps"
	"vigia/internal/models"
	"vigia/internal/pipeline/rules"
)

// RuleEvaluator evaluates a single location rule against an origin.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, origin models.Coordinates, rule models.LocationRule) (*rules.Result, error)
}

// AddressResolver backfills coordinates for listings that arrived without
// them.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (*maps.GeocodeResult, error)
}

type Matcher struct {
	rules    RuleEvaluator
	resolver AddressResolver
	logger   logger.Logger
}

func NewMatcher(evaluator RuleEvaluator, resolver AddressResolver, log logger.Logger) *Matcher {
	return &Matcher{
		rules:    evaluator,
		resolver: resolver,
		logger:   log.WithFields(map[string]interface{}{"component": "matcher"}),
	}
}

// Matches combines the numeric filters with the location rule verdicts.
//
// The numeric gate runs first and short-circuits, keeping the expensive
// location path off the common case. Every location rule is evaluated and
// the verdicts are ANDed; diagnostics collect a {rule, duration} entry for
// every rule that produced a duration, pass or fail, so callers can show
// near-misses.
func (m *Matcher) Matches(ctx context.Context, listing *models.Listing, prefs *models.UserPreferences) models.MatchResult {
	noMatch := models.MatchResult{IsMatch: false, MatchedRules: []models.MatchedRule{}}

	if !m.numericGate(listing, prefs) {
		return noMatch
	}

	if len(prefs.Locations) == 0 {
		return models.MatchResult{IsMatch: true, MatchedRules: []models.MatchedRule{}}
	}

	origin, ok := listing.Coordinates()
	if !ok {
		resolved, err := m.resolver.Resolve(ctx, listing.FullAddress())
		if err != nil {
			// Indeterminate: without coordinates the rules cannot run.
			m.logger.Warn("listing coordinates unresolvable, treating as non-match", map[string]interface{}{
				"listingId": listing.ID,
				"error":     err.Error(),
			})
			return noMatch
		}
		listing.SetCoordinates(resolved.Location)
		origin = resolved.Location
	}

	allPassed := true
	diagnostics := make([]models.MatchedRule, 0, len(prefs.Locations))

	for _, rule := range prefs.Locations {
		result, err := m.rules.Evaluate(ctx, origin, rule)
		if err != nil {
			m.logger.Debug("rule evaluation failed", map[string]interface{}{
				"listingId": listing.ID,
				"ruleId":    rule.ID,
				"error":     err.Error(),
			})
			allPassed = false
			continue
		}

		diagnostics = append(diagnostics, models.MatchedRule{
			Rule:           rule,
			ActualDuration: result.DurationMinutes,
		})
		if !result.Passed {
			allPassed = false
		}
	}

	return models.MatchResult{IsMatch: allPassed, MatchedRules: diagnostics}
}

func (m *Matcher) numericGate(listing *models.Listing, prefs *models.UserPreferences) bool {
	return prefs.Rent.Contains(listing.Rent) &&
		prefs.Condo.Contains(listing.CondoFee) &&
		listing.Bedrooms >= prefs.Bedrooms &&
		listing.ParkingSpots >= prefs.ParkingSpots
}
