// Package rules holds the pure geo and fare rules: great-circle distance,
// service-area membership, fare calculation and the booking validation
// policy. Everything here is side-effect free.
package rules

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusMiles = 3958.8

var (
	// ErrMissingCoordinates is returned when an endpoint was not resolved
	// to a concrete place before booking.
	ErrMissingCoordinates = errors.New("pickup and dropoff must be selected from the address suggestions")

	// ErrOutsideServiceArea is returned when an endpoint falls outside the
	// configured service region.
	ErrOutsideServiceArea = errors.New("address is outside the service area")

	// ErrTripTooLong is returned when the declared trip exceeds the cap.
	ErrTripTooLong = errors.New("trip exceeds the maximum allowed distance")

	// ErrDistanceMismatch is returned when declared miles disagree with the
	// computed great-circle distance beyond the tolerance.
	ErrDistanceMismatch = errors.New("declared distance does not match the route")
)

// Region describes the fixed service area and fare schedule.
type Region struct {
	Name               string
	CenterLat          float64
	CenterLng          float64
	ServiceRadiusMiles float64
	MaxTripMiles       float64
	ToleranceMiles     float64
	BaseFare           float64
	PerMileRate        float64
}

// DefaultRegion returns the Long Beach service area with the standard fare
// schedule.
func DefaultRegion() Region {
	return Region{
		Name:               "Long Beach",
		CenterLat:          33.7701,
		CenterLng:          -118.1937,
		ServiceRadiusMiles: 12,
		MaxTripMiles:       25,
		ToleranceMiles:     2,
		BaseFare:           6,
		PerMileRate:        2.5,
	}
}

// DistanceMiles returns the great-circle (haversine) distance in miles
// between two points given in decimal degrees. Symmetric; zero for
// identical points.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// InsideServiceArea reports whether the point lies within the region's
// service radius. A point exactly on the boundary is inside.
func (r Region) InsideServiceArea(lat, lng float64) bool {
	return DistanceMiles(lat, lng, r.CenterLat, r.CenterLng) <= r.ServiceRadiusMiles
}

// Fare returns the fare for a trip of the given length. Negative input is
// clamped, so the caller pays the base fare only.
func (r Region) Fare(miles float64) float64 {
	return r.BaseFare + math.Max(0, miles)*r.PerMileRate
}

// PriceLabel formats a fare amount for display.
func PriceLabel(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// BookingInput carries the fields the validation policy inspects.
type BookingInput struct {
	PickupLat     float64
	PickupLng     float64
	DropoffLat    float64
	DropoffLng    float64
	HasPickup     bool
	HasDropoff    bool
	DeclaredMiles float64
}

// ValidateBooking applies the booking-time policy: both endpoints must be
// resolved, both must be inside the service area, the declared distance must
// not exceed the trip cap and must agree with the computed great-circle
// distance within the tolerance. Returns the computed miles on success.
func (r Region) ValidateBooking(in BookingInput) (float64, error) {
	if !in.HasPickup || !in.HasDropoff {
		return 0, ErrMissingCoordinates
	}

	if in.DeclaredMiles > r.MaxTripMiles {
		return 0, ErrTripTooLong
	}

	if !r.InsideServiceArea(in.PickupLat, in.PickupLng) ||
		!r.InsideServiceArea(in.DropoffLat, in.DropoffLng) {
		return 0, ErrOutsideServiceArea
	}

	computed := DistanceMiles(in.PickupLat, in.PickupLng, in.DropoffLat, in.DropoffLng)
	if math.Abs(in.DeclaredMiles-computed) > r.ToleranceMiles {
		return 0, ErrDistanceMismatch
	}

	return computed, nil
}
