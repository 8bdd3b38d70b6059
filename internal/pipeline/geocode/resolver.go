// Package geocode resolves free-text listing addresses to coordinates,
// memoizing results in an injected cache.
package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"vigia/internal/cache"
	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/maps"
)

// Geocoder is the upstream geocoding call.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error)
}

type Resolver struct {
	geocoder Geocoder
	cache    cache.Cache
	ttl      time.Duration
	logger   logger.Logger
}

func NewResolver(geocoder Geocoder, c cache.Cache, ttl time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    c,
		ttl:      ttl,
		logger:   log.WithFields(map[string]interface{}{"component": "geocode"}),
	}
}

// Resolve returns the cached result for the normalized address, calling the
// upstream service once on a miss and caching the first result. Errors and
// empty results are not cached, so a later retry can succeed.
func (r *Resolver) Resolve(ctx context.Context, address string) (*maps.GeocodeResult, error) {
	key := cacheKey(address)

	if cached, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var result maps.GeocodeResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
		// Corrupt entry falls through to a fresh lookup.
	} else if err != nil {
		r.logger.Warn("geocode cache read failed", map[string]interface{}{
			"address": address,
			"error":   err.Error(),
		})
	}

	result, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperrors.NewGeocodeFailure(address, nil)
	}

	if data, err := json.Marshal(result); err == nil {
		if err := r.cache.Set(ctx, key, string(data), r.ttl); err != nil {
			r.logger.Warn("geocode cache write failed", map[string]interface{}{
				"address": address,
				"error":   err.Error(),
			})
		}
	}

	return result, nil
}

func cacheKey(address string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	return "geocode:" + normalized
}
