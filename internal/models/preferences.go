package models

// TravelMode is the routing mode of a location rule.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
)

// RuleKind distinguishes how a rule's destination is resolved.
type RuleKind string

const (
	// RuleGeneric resolves the target as a category keyword to the nearest
	// matching place.
	RuleGeneric RuleKind = "generic"
	// RuleSpecific treats the target as a literal destination address.
	RuleSpecific RuleKind = "specific"
)

// LocationRule is a user-defined travel-time constraint from a listing to a
// destination.
type LocationRule struct {
	ID            string     `json:"id"`
	Kind          RuleKind   `json:"kind"`
	Target        string     `json:"target"`
	MaxTime       int        `json:"maxTime"` // minutes
	TravelMode    TravelMode `json:"travelMode"`
	DepartureTime string     `json:"departureTime,omitempty"` // "HH:mm", driving only
}

// PriceRange is an inclusive [Min, Max] filter.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v falls inside the range.
func (r PriceRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// UserPreferences is one user's active search profile. Saving a profile
// replaces the previous one (upsert semantics).
type UserPreferences struct {
	UserID       string         `json:"userId"`
	Rent         PriceRange     `json:"rent"`
	Condo        PriceRange     `json:"condo"`
	Bedrooms     int            `json:"bedrooms"`
	ParkingSpots int            `json:"parkingSpots"`
	Amenities    []string       `json:"amenities,omitempty"`
	Locations    []LocationRule `json:"locations"`
}

// MatchedRule is the per-rule diagnostic attached to a match verdict.
type MatchedRule struct {
	Rule           LocationRule `json:"rule"`
	ActualDuration int          `json:"actualDuration"` // minutes
}

// MatchResult is the outcome of matching one listing against one profile.
type MatchResult struct {
	IsMatch      bool          `json:"isMatch"`
	MatchedRules []MatchedRule `json:"matchedRules"`
}

// ContactProfile carries the delivery endpoints for a user.
type ContactProfile struct {
	UserID      string `json:"userId"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
}
