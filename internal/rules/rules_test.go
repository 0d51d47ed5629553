package rules

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceMiles_Symmetric(t *testing.T) {
	testCases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{"within region", 33.7701, -118.1937, 33.8121, -118.1100},
		{"cross country", 33.7701, -118.1937, 40.7128, -74.0060},
		{"across equator", -1.0, 30.0, 2.0, 31.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ab := DistanceMiles(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
			ba := DistanceMiles(tc.lat2, tc.lng2, tc.lat1, tc.lng1)
			if ab != ba {
				t.Errorf("distance not symmetric: %f vs %f", ab, ba)
			}
		})
	}
}

func TestDistanceMiles_ZeroForIdenticalPoints(t *testing.T) {
	if d := DistanceMiles(33.7701, -118.1937, 33.7701, -118.1937); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestDistanceMiles_KnownValue(t *testing.T) {
	// LAX to JFK is roughly 2470-2480 miles great circle.
	d := DistanceMiles(33.9416, -118.4085, 40.6413, -73.7781)
	if d < 2400 || d > 2550 {
		t.Errorf("LAX-JFK distance out of expected range: %f", d)
	}
}

func TestFare_Linear(t *testing.T) {
	r := DefaultRegion()

	for _, miles := range []float64{0, 1, 5, 12.5, 25} {
		want := r.BaseFare + miles*r.PerMileRate
		if got := r.Fare(miles); got != want {
			t.Errorf("Fare(%f) = %f, want %f", miles, got, want)
		}
	}
}

func TestFare_NegativeClampedToBase(t *testing.T) {
	r := DefaultRegion()
	if got := r.Fare(-3); got != r.BaseFare {
		t.Errorf("Fare(-3) = %f, want base fare %f", got, r.BaseFare)
	}
}

func TestPriceLabel(t *testing.T) {
	if got := PriceLabel(18.5); got != "$18.50" {
		t.Errorf("PriceLabel(18.5) = %q, want $18.50", got)
	}
}

func TestInsideServiceArea_ExactBoundaryIsInside(t *testing.T) {
	r := DefaultRegion()
	// A point north of the center; pin the radius to its exact distance so
	// the boundary comparison is tested with no float slack.
	lat, lng := r.CenterLat+0.15, r.CenterLng
	r.ServiceRadiusMiles = DistanceMiles(lat, lng, r.CenterLat, r.CenterLng)

	if !r.InsideServiceArea(lat, lng) {
		t.Error("point exactly on the service-radius boundary must be inside")
	}
}

func TestInsideServiceArea_BeyondRadiusIsOutside(t *testing.T) {
	r := DefaultRegion()
	// Move north far enough to clear the radius by more than a mile.
	deltaDeg := (r.ServiceRadiusMiles + 1.5) / 69.0 // ~69 miles per degree of latitude
	if r.InsideServiceArea(r.CenterLat+deltaDeg, r.CenterLng) {
		t.Error("point beyond the service radius must be outside")
	}
}

func TestValidateBooking_MissingCoordinates(t *testing.T) {
	r := DefaultRegion()

	_, err := r.ValidateBooking(BookingInput{
		PickupLat: r.CenterLat, PickupLng: r.CenterLng, HasPickup: true,
		HasDropoff: false,
	})
	if !errors.Is(err, ErrMissingCoordinates) {
		t.Errorf("expected ErrMissingCoordinates, got %v", err)
	}
}

func TestValidateBooking_TripTooLong(t *testing.T) {
	r := DefaultRegion()

	_, err := r.ValidateBooking(BookingInput{
		PickupLat: r.CenterLat, PickupLng: r.CenterLng, HasPickup: true,
		DropoffLat: r.CenterLat, DropoffLng: r.CenterLng, HasDropoff: true,
		DeclaredMiles: r.MaxTripMiles + 1,
	})
	if !errors.Is(err, ErrTripTooLong) {
		t.Errorf("expected ErrTripTooLong, got %v", err)
	}
}

func TestValidateBooking_OutsideServiceArea(t *testing.T) {
	r := DefaultRegion()

	_, err := r.ValidateBooking(BookingInput{
		PickupLat: r.CenterLat, PickupLng: r.CenterLng, HasPickup: true,
		DropoffLat: 34.0522, DropoffLng: -117.0, HasDropoff: true, // far east of the region
		DeclaredMiles: 10,
	})
	if !errors.Is(err, ErrOutsideServiceArea) {
		t.Errorf("expected ErrOutsideServiceArea, got %v", err)
	}
}

func TestValidateBooking_ToleranceBoundary(t *testing.T) {
	r := DefaultRegion()
	// Identical endpoints compute to exactly zero miles, so the declared
	// value exercises the tolerance comparison with no rounding noise.
	base := BookingInput{
		PickupLat: r.CenterLat, PickupLng: r.CenterLng, HasPickup: true,
		DropoffLat: r.CenterLat, DropoffLng: r.CenterLng, HasDropoff: true,
	}

	base.DeclaredMiles = r.ToleranceMiles
	if _, err := r.ValidateBooking(base); err != nil {
		t.Errorf("declared miles exactly at tolerance must pass, got %v", err)
	}

	base.DeclaredMiles = r.ToleranceMiles + 1
	if _, err := r.ValidateBooking(base); !errors.Is(err, ErrDistanceMismatch) {
		t.Errorf("expected ErrDistanceMismatch one unit beyond tolerance, got %v", err)
	}
}

func TestValidateBooking_ReturnsComputedMiles(t *testing.T) {
	r := DefaultRegion()
	dropLat := r.CenterLat + 0.05

	computed, err := r.ValidateBooking(BookingInput{
		PickupLat: r.CenterLat, PickupLng: r.CenterLng, HasPickup: true,
		DropoffLat: dropLat, DropoffLng: r.CenterLng, HasDropoff: true,
		DeclaredMiles: DistanceMiles(r.CenterLat, r.CenterLng, dropLat, r.CenterLng),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DistanceMiles(r.CenterLat, r.CenterLng, dropLat, r.CenterLng)
	if math.Abs(computed-want) > 1e-9 {
		t.Errorf("computed miles %f, want %f", computed, want)
	}
}
