// Package rules evaluates one location rule against one listing origin,
// resolving the rule's destination and computing the travel duration.
package rules

import (
	"context"
	"fmt"
	"time"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/maps"
	"vigia/internal/models"
)

// RoutingAPI is the subset of the maps client the evaluator needs.
type RoutingAPI interface {
	NearestPlace(ctx context.Context, origin models.Coordinates, keyword string) (*maps.Place, error)
	Route(ctx context.Context, origin models.Coordinates, dest maps.Destination, mode models.TravelMode, departure *time.Time) (*maps.RouteLeg, error)
}

// Result is a completed evaluation. DurationMinutes is always populated.
type Result struct {
	DurationMinutes int
	Passed          bool
}

type Evaluator struct {
	routing RoutingAPI
	logger  logger.Logger
	now     func() time.Time
}

func NewEvaluator(routing RoutingAPI, log logger.Logger) *Evaluator {
	return &Evaluator{
		routing: routing,
		logger:  log.WithFields(map[string]interface{}{"component": "rules"}),
		now:     time.Now,
	}
}

// Evaluate resolves the rule destination, computes the travel duration and
// applies the pass/fail threshold. Any returned error means the rule failed
// without producing a duration; callers treat it as a failed rule, never as
// a fatal condition.
func (e *Evaluator) Evaluate(ctx context.Context, origin models.Coordinates, rule models.LocationRule) (*Result, error) {
	dest, err := e.resolveDestination(ctx, origin, rule)
	if err != nil {
		return nil, err
	}

	departure, err := e.departureFor(rule)
	if err != nil {
		return nil, err
	}

	leg, err := e.routing.Route(ctx, origin, dest, rule.TravelMode, departure)
	if err != nil {
		return nil, err
	}
	if leg == nil {
		return nil, apperrors.NewRouteNotFound(dest.String())
	}

	seconds := leg.DurationSeconds
	if leg.TrafficDurationSeconds > 0 {
		seconds = leg.TrafficDurationSeconds
	}
	minutes := (seconds + 59) / 60

	return &Result{
		DurationMinutes: minutes,
		Passed:          minutes <= rule.MaxTime,
	}, nil
}

func (e *Evaluator) resolveDestination(ctx context.Context, origin models.Coordinates, rule models.LocationRule) (maps.Destination, error) {
	if rule.Kind == models.RuleGeneric {
		place, err := e.routing.NearestPlace(ctx, origin, rule.Target)
		if err != nil {
			return maps.Destination{}, err
		}
		if place == nil {
			return maps.Destination{}, apperrors.NewPlaceNotFound(rule.Target)
		}
		return maps.Destination{PlaceID: place.PlaceID}, nil
	}
	return maps.Destination{Address: rule.Target}, nil
}

// departureFor computes the departure timestamp for a driving rule with a
// scheduled time-of-day, or nil when scheduling does not apply.
func (e *Evaluator) departureFor(rule models.LocationRule) (*time.Time, error) {
	if rule.TravelMode != models.ModeDriving || rule.DepartureTime == "" {
		return nil, nil
	}

	departure, err := NextDeparture(e.now(), rule.DepartureTime)
	if err != nil {
		return nil, apperrors.NewPreferenceValidationFailed(fmt.Sprintf("invalid departure time %q", rule.DepartureTime))
	}
	return &departure, nil
}

// NextDeparture returns the next future occurrence of the HH:mm time-of-day
// after now. When that occurrence lands on a weekend it advances to the same
// time on the next Monday.
func NextDeparture(now time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	switch candidate.Weekday() {
	case time.Saturday:
		candidate = candidate.AddDate(0, 0, 2)
	case time.Sunday:
		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate, nil
}
