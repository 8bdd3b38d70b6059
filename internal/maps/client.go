// Package maps is a thin client for the Google Maps web services used by
// rule evaluation: geocoding, nearby place search, and directions.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/httpclient"
	"vigia/internal/common/logger"
	"vigia/internal/common/metrics"
	"vigia/internal/models"
)

// GeocodeResult is a resolved address.
type GeocodeResult struct {
	Location         models.Coordinates `json:"location"`
	PlaceID          string             `json:"placeId,omitempty"`
	FormattedAddress string             `json:"formattedAddress,omitempty"`
}

// Place is a nearby-search candidate.
type Place struct {
	PlaceID  string             `json:"placeId"`
	Name     string             `json:"name,omitempty"`
	Location models.Coordinates `json:"location"`
}

// Destination addresses a routing target either literally or by place
// identifier. Exactly one field is set.
type Destination struct {
	Address string
	PlaceID string
}

func (d Destination) param() string {
	if d.PlaceID != "" {
		return "place_id:" + d.PlaceID
	}
	return d.Address
}

// String is used in error details.
func (d Destination) String() string { return d.param() }

// RouteLeg carries the durations of the first leg of the best route.
type RouteLeg struct {
	DurationSeconds        int
	TrafficDurationSeconds int // 0 when the API returned no traffic estimate
}

type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "maps"}),
	}
}

// --- wire types ---

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			DurationInTraffic *struct {
				Value int `json:"value"`
			} `json:"duration_in_traffic"`
		} `json:"legs"`
	} `json:"routes"`
}

// Geocode resolves a free-text address. It returns nil with no error when
// the service answers with an empty result set.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, &resp, "geocode"); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	first := resp.Results[0]
	return &GeocodeResult{
		Location:         models.Coordinates{Lat: first.Geometry.Location.Lat, Lng: first.Geometry.Location.Lng},
		PlaceID:          first.PlaceID,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// NearestPlace returns the closest place matching the keyword, ranked by
// distance from the origin, or nil when nothing matched.
func (c *Client) NearestPlace(ctx context.Context, origin models.Coordinates, keyword string) (*Place, error) {
	params := url.Values{}
	params.Set("location", formatLatLng(origin))
	params.Set("keyword", keyword)
	params.Set("rankby", "distance")

	var resp placesResponse
	if err := c.get(ctx, "/place/nearbysearch/json", params, &resp, "places"); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	first := resp.Results[0]
	return &Place{
		PlaceID:  first.PlaceID,
		Name:     first.Name,
		Location: models.Coordinates{Lat: first.Geometry.Location.Lat, Lng: first.Geometry.Location.Lng},
	}, nil
}

// Route asks for directions and returns the first leg of the best route, or
// nil when no route exists. departure, when non-nil, is passed through for a
// traffic-aware estimate.
func (c *Client) Route(ctx context.Context, origin models.Coordinates, dest Destination, mode models.TravelMode, departure *time.Time) (*RouteLeg, error) {
	params := url.Values{}
	params.Set("origin", formatLatLng(origin))
	params.Set("destination", dest.param())
	params.Set("mode", string(mode))
	if departure != nil {
		params.Set("departure_time", strconv.FormatInt(departure.Unix(), 10))
	}

	var resp directionsResponse
	if err := c.get(ctx, "/directions/json", params, &resp, "directions"); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, nil
	}

	leg := resp.Routes[0].Legs[0]
	out := &RouteLeg{DurationSeconds: leg.Duration.Value}
	if leg.DurationInTraffic != nil {
		out.TrafficDurationSeconds = leg.DurationInTraffic.Value
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}, service string) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return apperrors.NewTransportError(service, err)
	}

	start := time.Now()
	resp, err := c.http.DoWithContext(ctx, req)
	metrics.ExternalCallDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		return apperrors.NewTransportError(service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewTransportError(service, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewTransportError(service, err)
	}
	return nil
}

func formatLatLng(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}
