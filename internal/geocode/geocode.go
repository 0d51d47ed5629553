// Package geocode wraps the Google Maps APIs used by the booking form:
// free-text place suggestions and a driving-distance estimate between two
// resolved points.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// ErrDisabled is returned when no Maps API key is configured.
var ErrDisabled = errors.New("geocoding is not configured")

// Suggestion is one candidate place for a free-text query.
type Suggestion struct {
	Name string
	Lat  float64
	Lng  float64
}

// Service handles interactions with the Google Maps API. A Service built
// without an API key is disabled; callers get ErrDisabled rather than a
// partially working client.
type Service struct {
	client *maps.Client
}

// NewService creates a geocoding service with the given API key. An empty
// key yields a disabled service.
func NewService(apiKey string) (*Service, error) {
	if apiKey == "" {
		return &Service{}, nil
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Service{client: client}, nil
}

// Enabled reports whether the service has an API client.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Suggest returns up to limit candidate places for a free-text query, biased
// toward the given region center.
func (s *Service) Suggest(ctx context.Context, query string, centerLat, centerLng float64, limit int) ([]Suggestion, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	r := &maps.GeocodingRequest{
		Address: query,
		Bounds: &maps.LatLngBounds{
			NorthEast: maps.LatLng{Lat: centerLat + 0.3, Lng: centerLng + 0.3},
			SouthWest: maps.LatLng{Lat: centerLat - 0.3, Lng: centerLng - 0.3},
		},
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("geocode api error: %w", err)
	}

	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}

	suggestions := make([]Suggestion, 0, limit)
	for _, result := range results[:limit] {
		suggestions = append(suggestions, Suggestion{
			Name: result.FormattedAddress,
			Lat:  result.Geometry.Location.Lat,
			Lng:  result.Geometry.Location.Lng,
		})
	}
	return suggestions, nil
}

// DrivingMiles returns the driving distance in miles between two points.
// Falls back on the caller's great-circle estimate when disabled.
func (s *Service) DrivingMiles(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (float64, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}

	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", fromLat, fromLng),
		Destination: fmt.Sprintf("%f,%f", toLat, toLng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("directions api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, errors.New("no route found")
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return float64(meters) / 1609.344, nil
}
