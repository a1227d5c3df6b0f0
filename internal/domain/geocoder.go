package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceName        string
	Region           string  // first-level administrative area, e.g. "Selangor"
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves report locations. Implementations restrict results to
// Malaysia.
type Geocoder interface {
	// ForwardGeocode converts a place name and optional state to coordinates.
	ForwardGeocode(ctx context.Context, name, state string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lng float64) (GeocodingResult, error)
}
