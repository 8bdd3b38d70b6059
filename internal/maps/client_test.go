package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 2*time.Second, logger.NewTestLogger(t)), srv
}

func TestGeocode(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "Rua das Pitangueiras 10", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"place_id": "place-1",
				"formatted_address": "Rua das Pitangueiras, 10 - Águas Claras",
				"geometry": {"location": {"lat": -15.835, "lng": -48.05}}
			}]
		}`))
	})

	result, err := client.Geocode(context.Background(), "Rua das Pitangueiras 10")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "place-1", result.PlaceID)
	assert.Equal(t, -15.835, result.Location.Lat)
	assert.Equal(t, -48.05, result.Location.Lng)
}

func TestGeocode_EmptyResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	result, err := client.Geocode(context.Background(), "Endereço Inexistente")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestNearestPlace_RanksByDistanceAndTakesFirst(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "distance", r.URL.Query().Get("rankby"))
		assert.Equal(t, "academia", r.URL.Query().Get("keyword"))
		assert.Equal(t, "-15.835,-48.05", r.URL.Query().Get("location"))

		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"place_id": "closest", "name": "Academia Perto", "geometry": {"location": {"lat": -15.83, "lng": -48.04}}},
				{"place_id": "farther", "name": "Academia Longe", "geometry": {"location": {"lat": -15.9, "lng": -48.1}}}
			]
		}`))
	})

	place, err := client.NearestPlace(context.Background(), models.Coordinates{Lat: -15.835, Lng: -48.05}, "academia")
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "closest", place.PlaceID)
}

func TestNearestPlace_NoResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	place, err := client.NearestPlace(context.Background(), models.Coordinates{}, "heliporto")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestRoute(t *testing.T) {
	departure := time.Date(2025, 6, 9, 8, 30, 0, 0, time.UTC)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "place_id:place-1", q.Get("destination"))
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, "1749457800", q.Get("departure_time"))

		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"legs": [{
					"duration": {"value": 1080},
					"duration_in_traffic": {"value": 1320}
				}]
			}]
		}`))
	})

	leg, err := client.Route(
		context.Background(),
		models.Coordinates{Lat: -15.835, Lng: -48.05},
		Destination{PlaceID: "place-1"},
		models.ModeDriving,
		&departure,
	)
	require.NoError(t, err)
	require.NotNil(t, leg)
	assert.Equal(t, 1080, leg.DurationSeconds)
	assert.Equal(t, 1320, leg.TrafficDurationSeconds)
}

func TestRoute_NoTrafficEstimate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("departure_time"))
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{"legs": [{"duration": {"value": 540}}]}]
		}`))
	})

	leg, err := client.Route(
		context.Background(),
		models.Coordinates{Lat: -15.835, Lng: -48.05},
		Destination{Address: "Setor Comercial Sul"},
		models.ModeWalking,
		nil,
	)
	require.NoError(t, err)
	require.NotNil(t, leg)
	assert.Equal(t, 540, leg.DurationSeconds)
	assert.Zero(t, leg.TrafficDurationSeconds)
}

func TestRoute_NoRoutes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	})

	leg, err := client.Route(
		context.Background(),
		models.Coordinates{},
		Destination{Address: "Fernando de Noronha"},
		models.ModeBicycling,
		nil,
	)
	require.NoError(t, err)
	assert.Nil(t, leg)
}

func TestGet_NonOKStatusIsTransportError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Geocode(context.Background(), "Rua X")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransport))
}

func TestGet_NetworkFailureIsTransportError(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.Geocode(context.Background(), "Rua X")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransport))
}
