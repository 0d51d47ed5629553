package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/rules"
	"dispatch/internal/service"
)

// Long Beach endpoints roughly 3.3 miles apart.
const (
	pickupLat  = 33.7701
	pickupLng  = -118.1937
	dropoffLat = 33.80
	dropoffLng = -118.15
)

func validBooking() service.CreateRideRequest {
	return service.CreateRideRequest{
		Pickup:        "100 Ocean Blvd",
		PickupLat:     pickupLat,
		PickupLng:     pickupLng,
		HasPickup:     true,
		Dropoff:       "4900 Atlantic Ave",
		DropoffLat:    dropoffLat,
		DropoffLng:    dropoffLng,
		HasDropoff:    true,
		Phone:         "+15625550100",
		RequestedAt:   time.Now(),
		DeclaredMiles: 5,
	}
}

func TestBooking_CreatesPendingRideWithFare(t *testing.T) {
	rideRepo := NewMockRideRepository()
	bot := NewMockBotAPI()
	ops := NewMockOpsWebhook()
	notifier := service.NewNotifier(bot, ops, 100)
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), notifier)

	result, err := rideService.CreateRide(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}

	// $6 base + 5 miles at $2.50.
	if result.Fare != 18.5 {
		t.Errorf("expected fare 18.50, got %.2f", result.Fare)
	}
	if result.PriceLabel != "$18.50" {
		t.Errorf("expected price label $18.50, got %s", result.PriceLabel)
	}
	if result.Ride.Status != domain.RideStatusPending {
		t.Errorf("expected status PENDING, got %s", result.Ride.Status)
	}
	if result.EstimatedMiles <= 0 {
		t.Errorf("expected a positive computed distance, got %f", result.EstimatedMiles)
	}

	stored, err := rideRepo.GetByID(context.Background(), result.Ride.ID)
	if err != nil {
		t.Fatalf("expected ride to be persisted: %v", err)
	}
	if stored.Status != domain.RideStatusPending {
		t.Errorf("expected stored status PENDING, got %s", stored.Status)
	}

	transitions, _ := rideRepo.GetTransitions(context.Background(), result.Ride.ID)
	if len(transitions) != 1 || transitions[0].Status != domain.RideStatusPending {
		t.Errorf("expected one PENDING audit entry, got %+v", transitions)
	}

	// The drivers group gets the offer with an accept button.
	if len(bot.Sent) != 1 {
		t.Fatalf("expected one group message, got %d", len(bot.Sent))
	}
	if bot.Sent[0].ChatID != 100 {
		t.Errorf("expected message in chat 100, got %d", bot.Sent[0].ChatID)
	}
	if len(bot.Sent[0].Keyboard) == 0 {
		t.Error("expected an inline keyboard on the ride offer")
	}
	if len(ops.Posts) != 1 {
		t.Errorf("expected one ops post, got %d", len(ops.Posts))
	}
}

func TestBooking_RequiresPickupDropoffAndPhone(t *testing.T) {
	rideService := service.NewRideService(NewMockRideRepository(), rules.DefaultRegion(), nil)

	req := validBooking()
	req.Phone = "   "

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, service.ErrMissingFields) {
		t.Errorf("expected ErrMissingFields, got %v", err)
	}
}

func TestBooking_RequiresResolvedCoordinates(t *testing.T) {
	rideService := service.NewRideService(NewMockRideRepository(), rules.DefaultRegion(), nil)

	req := validBooking()
	req.HasDropoff = false

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, rules.ErrMissingCoordinates) {
		t.Errorf("expected ErrMissingCoordinates, got %v", err)
	}
}

func TestBooking_RejectsTripBeyondCap(t *testing.T) {
	rideService := service.NewRideService(NewMockRideRepository(), rules.DefaultRegion(), nil)

	req := validBooking()
	req.DeclaredMiles = 30

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, rules.ErrTripTooLong) {
		t.Errorf("expected ErrTripTooLong, got %v", err)
	}
}

func TestBooking_RejectsEndpointOutsideServiceArea(t *testing.T) {
	rideService := service.NewRideService(NewMockRideRepository(), rules.DefaultRegion(), nil)

	req := validBooking()
	req.DropoffLat = 34.2 // ~30 miles north of the center.

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, rules.ErrOutsideServiceArea) {
		t.Errorf("expected ErrOutsideServiceArea, got %v", err)
	}
}

func TestBooking_RejectsDistanceMismatch(t *testing.T) {
	rideService := service.NewRideService(NewMockRideRepository(), rules.DefaultRegion(), nil)

	req := validBooking()
	req.DeclaredMiles = 10 // Endpoints are ~3.3 miles apart.

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, rules.ErrDistanceMismatch) {
		t.Errorf("expected ErrDistanceMismatch, got %v", err)
	}
}

func TestBooking_FailedValidationWritesNothing(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), nil)

	req := validBooking()
	req.DeclaredMiles = 30

	if _, err := rideService.CreateRide(context.Background(), req); err == nil {
		t.Fatal("expected validation failure")
	}
	if rideRepo.CreateCallCount != 0 {
		t.Errorf("expected no Create call, got %d", rideRepo.CreateCallCount)
	}
}

func TestBooking_OfferMentionsPrice(t *testing.T) {
	rideRepo := NewMockRideRepository()
	bot := NewMockBotAPI()
	notifier := service.NewNotifier(bot, nil, 100)
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), notifier)

	if _, err := rideService.CreateRide(context.Background(), validBooking()); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if len(bot.Sent) != 1 || !strings.Contains(bot.Sent[0].Text, "$18.50") {
		t.Errorf("expected ride offer to carry the price, got %+v", bot.Sent)
	}
}
