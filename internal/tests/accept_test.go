package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
	"dispatch/internal/telegram"
)

func pendingRide(id string) *domain.Ride {
	now := time.Now()
	return &domain.Ride{
		ID:         id,
		Pickup:     "100 Ocean Blvd",
		Dropoff:    "4900 Atlantic Ave",
		Phone:      "+15625550100",
		Fare:       18.5,
		PriceLabel: "$18.50",
		Region:     "Long Beach",
		Status:     domain.RideStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func callbackUpdate(updateID, driverChatID int64, name, data string) *telegram.Update {
	return &telegram.Update{
		UpdateID: updateID,
		CallbackQuery: &telegram.CallbackQuery{
			ID:      "cb-1",
			From:    telegram.User{ID: driverChatID, FirstName: name},
			Message: &telegram.Message{MessageID: 7, Chat: telegram.Chat{ID: 100}},
			Data:    data,
		},
	}
}

func newDispatchService(rideRepo *MockRideRepository, driverRepo *MockDriverRepository, lock *MockLockStore, dedup *MockDedupStore, bot *MockBotAPI, ops *MockOpsWebhook, requireVerified bool) *service.DispatchService {
	notifier := service.NewNotifier(bot, ops, 100)
	return service.NewDispatchService(rideRepo, driverRepo, lock, dedup, bot, notifier, requireVerified)
}

func TestAccept_AssignsDriverAndEditsOffer(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	driverRepo := NewMockDriverRepository()
	bot := NewMockBotAPI()
	svc := newDispatchService(rideRepo, driverRepo, NewMockLockStore(), NewMockDedupStore(), bot, NewMockOpsWebhook(), false)

	update := callbackUpdate(1, 555, "Alex", "accept_ride-1")
	if err := svc.HandleUpdate(context.Background(), update); err != nil {
		t.Fatalf("expected accept to succeed, got %v", err)
	}

	ride, _ := rideRepo.GetByID(context.Background(), "ride-1")
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected status ACCEPTED, got %s", ride.Status)
	}
	if ride.DriverChatID != 555 || ride.DriverName != "Alex" {
		t.Errorf("expected driver 555/Alex on the ride, got %d/%s", ride.DriverChatID, ride.DriverName)
	}

	// The offer message is rewritten with the next-step keyboard.
	if len(bot.Edited) != 1 {
		t.Fatalf("expected one message edit, got %d", len(bot.Edited))
	}
	if len(bot.Edited[0].Keyboard) == 0 {
		t.Error("expected an arrived/cancel keyboard after accept")
	}
	// The spinner is always stopped.
	if len(bot.Answered) != 1 {
		t.Errorf("expected the callback to be answered, got %d", len(bot.Answered))
	}
	if driverRepo.UpsertCallCount != 1 {
		t.Errorf("expected the driver registry to be updated, got %d upserts", driverRepo.UpsertCallCount)
	}
}

func TestAccept_SecondDriverLosesRace(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	svc := newDispatchService(rideRepo, NewMockDriverRepository(), NewMockLockStore(), NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), false)

	if err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1")); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	err := svc.HandleUpdate(context.Background(), callbackUpdate(2, 777, "Sam", "accept_ride-1"))
	if !errors.Is(err, service.ErrRideNotPending) {
		t.Errorf("expected ErrRideNotPending for the loser, got %v", err)
	}

	ride, _ := rideRepo.GetByID(context.Background(), "ride-1")
	if ride.DriverChatID != 555 {
		t.Errorf("expected the first driver to keep the ride, got %d", ride.DriverChatID)
	}
}

func TestAccept_RedeliveredUpdateIsNotReplayed(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	svc := newDispatchService(rideRepo, NewMockDriverRepository(), NewMockLockStore(), NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), false)

	if err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1")); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	accepts := rideRepo.AcceptCallCount

	// Same update ID again: acknowledged without touching the ride.
	if err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1")); err != nil {
		t.Fatalf("redelivery should be acknowledged, got %v", err)
	}
	if rideRepo.AcceptCallCount != accepts {
		t.Errorf("expected no extra Accept call on redelivery, got %d", rideRepo.AcceptCallCount)
	}
}

func TestAccept_SameDriverClickingAgainIsIdempotent(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	svc := newDispatchService(rideRepo, NewMockDriverRepository(), NewMockLockStore(), NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), false)

	if err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1")); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	// A fresh update ID from the winning driver still succeeds.
	if err := svc.HandleUpdate(context.Background(), callbackUpdate(2, 555, "Alex", "accept_ride-1")); err != nil {
		t.Errorf("expected the winner's repeat click to succeed, got %v", err)
	}
}

func TestAccept_LockHeldRejectsConcurrentAttempt(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	lock := NewMockLockStore()
	lock.Hold("ride-1")
	svc := newDispatchService(rideRepo, NewMockDriverRepository(), lock, NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), false)

	err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1"))
	if !errors.Is(err, service.ErrAcceptInProgress) {
		t.Errorf("expected ErrAcceptInProgress, got %v", err)
	}

	ride, _ := rideRepo.GetByID(context.Background(), "ride-1")
	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected the ride to stay PENDING, got %s", ride.Status)
	}
}

func TestAccept_UnverifiedDriverIsRejectedWhenGateIsOn(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	svc := newDispatchService(rideRepo, NewMockDriverRepository(), NewMockLockStore(), NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), true)

	err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1"))
	if !errors.Is(err, service.ErrDriverNotVerified) {
		t.Errorf("expected ErrDriverNotVerified, got %v", err)
	}

	ride, _ := rideRepo.GetByID(context.Background(), "ride-1")
	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected the ride to stay PENDING, got %s", ride.Status)
	}
}

func TestAccept_VerifiedDriverPassesGate(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ChatID: 555, Name: "Alex", Phone: "+15625550111", Verified: true})
	svc := newDispatchService(rideRepo, driverRepo, NewMockLockStore(), NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), true)

	if err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "accept_ride-1")); err != nil {
		t.Fatalf("expected verified driver to accept, got %v", err)
	}

	ride, _ := rideRepo.GetByID(context.Background(), "ride-1")
	if ride.DriverPhone != "+15625550111" {
		t.Errorf("expected the registry phone on the ride, got %q", ride.DriverPhone)
	}
}

func TestAccept_UnknownCallbackIsIgnored(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	svc := newDispatchService(rideRepo, NewMockDriverRepository(), NewMockLockStore(), NewMockDedupStore(), NewMockBotAPI(), NewMockOpsWebhook(), false)

	if err := svc.HandleUpdate(context.Background(), callbackUpdate(1, 555, "Alex", "launch_ride-1")); err != nil {
		t.Errorf("expected unknown callback to be ignored, got %v", err)
	}
}
