package models

import (
	"strings"
	"time"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Listing is a scraped rental property record. Listings are immutable after
// ingestion except for a lazy coordinate backfill by the geocode resolver.
type Listing struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind,omitempty"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	Bedrooms     int       `json:"bedrooms"`
	Suites       int       `json:"suites"`
	ParkingSpots int       `json:"parkingSpots"`
	Area         float64   `json:"area,omitempty"`
	Rent         float64   `json:"rent"`
	CondoFee     float64   `json:"condoFee"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Images       []string  `json:"images,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Coordinates returns the listing's coordinates and whether they are set.
func (l *Listing) Coordinates() (Coordinates, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *l.Latitude, Lng: *l.Longitude}, true
}

// SetCoordinates backfills coordinates. Once set they are never changed.
func (l *Listing) SetCoordinates(c Coordinates) {
	if l.Latitude != nil && l.Longitude != nil {
		return
	}
	lat, lng := c.Lat, c.Lng
	l.Latitude = &lat
	l.Longitude = &lng
}

// FullAddress concatenates the address fields for geocoding.
func (l *Listing) FullAddress() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Street, l.Neighborhood, l.City} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
