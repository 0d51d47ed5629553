package tests

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/rules"
	"dispatch/internal/service"
)

func TestCancel_PendingRideStopsTheSearch(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	bot := NewMockBotAPI()
	ops := NewMockOpsWebhook()
	notifier := service.NewNotifier(bot, ops, 100)
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), notifier)

	ride, err := rideService.CancelRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", ride.Status)
	}

	transitions, _ := rideRepo.GetTransitions(context.Background(), "ride-1")
	if len(transitions) != 1 || transitions[0].Status != domain.RideStatusCancelled {
		t.Errorf("expected one CANCELLED audit entry, got %+v", transitions)
	}

	// No driver yet, so the group is told to stop searching.
	if len(bot.Sent) != 1 || !strings.Contains(bot.Sent[0].Text, "CANCELLED") {
		t.Errorf("expected a cancellation notice in the group, got %+v", bot.Sent)
	}
	if len(ops.Posts) != 1 {
		t.Errorf("expected one ops post, got %d", len(ops.Posts))
	}
}

func TestCancel_AcceptedRideTellsTheDriver(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(acceptedRide("ride-1", 555))
	bot := NewMockBotAPI()
	notifier := service.NewNotifier(bot, nil, 100)
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), notifier)

	if _, err := rideService.CancelRide(context.Background(), "ride-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if len(bot.Sent) != 1 || bot.Sent[0].ChatID != 555 {
		t.Errorf("expected a direct message to driver 555, got %+v", bot.Sent)
	}
}

func TestCancel_TerminalRideIsRejected(t *testing.T) {
	rideRepo := NewMockRideRepository()
	ride := pendingRide("ride-1")
	ride.Status = domain.RideStatusCompleted
	rideRepo.AddRide(ride)
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), nil)

	_, err := rideService.CancelRide(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrRideAlreadyTerminal) {
		t.Errorf("expected ErrRideAlreadyTerminal, got %v", err)
	}
}

func TestCancel_FailedAuditWriteIsLogged(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(pendingRide("ride-1"))
	rideRepo.AppendTransitionError = errors.New("disk full")
	rideService := service.NewRideService(rideRepo, rules.DefaultRegion(), nil)

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	// The status change is already durable, so the cancel still succeeds,
	// but the lost audit entry must leave a trace.
	ride, err := rideService.CancelRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", ride.Status)
	}
	if !strings.Contains(logged.String(), "audit write failed") {
		t.Errorf("expected the audit failure to be logged, got %q", logged.String())
	}
}

func TestCancel_UnknownRideIsNotFound(t *testing.T) {
	rideService := service.NewRideService(NewMockRideRepository(), rules.DefaultRegion(), nil)

	_, err := rideService.CancelRide(context.Background(), "ride-missing")
	if err == nil {
		t.Fatal("expected an error for an unknown ride")
	}
}
