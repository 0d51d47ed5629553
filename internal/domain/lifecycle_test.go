package domain

import "testing"

func TestCanTransition_LegalEdges(t *testing.T) {
	legal := []struct {
		from, to RideStatus
	}{
		{RideStatusPending, RideStatusAccepted},
		{RideStatusPending, RideStatusCancelled},
		{RideStatusPending, RideStatusNoDriverAvailable},
		{RideStatusAccepted, RideStatusArrived},
		{RideStatusAccepted, RideStatusCancelled},
		{RideStatusAccepted, RideStatusFailedPickup},
		{RideStatusAccepted, RideStatusCommunicationFailed},
		{RideStatusAccepted, RideStatusPassengerNoShow},
		{RideStatusArrived, RideStatusCompleted},
		{RideStatusArrived, RideStatusCancelled},
		{RideStatusArrived, RideStatusFailedPickup},
		{RideStatusArrived, RideStatusCommunicationFailed},
		{RideStatusArrived, RideStatusPassengerNoShow},
	}

	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be legal", tc.from, tc.to)
		}
	}
}

func TestCanTransition_NoExitFromTerminalStates(t *testing.T) {
	terminals := []RideStatus{
		RideStatusCompleted,
		RideStatusCancelled,
		RideStatusFailedPickup,
		RideStatusCommunicationFailed,
		RideStatusPassengerNoShow,
		RideStatusNoDriverAvailable,
	}

	for _, from := range terminals {
		if !IsTerminal(from) {
			t.Errorf("expected %s to be terminal", from)
		}
		for to := range allStatuses {
			if CanTransition(from, to) {
				t.Errorf("terminal state %s must not transition to %s", from, to)
			}
		}
	}
}

func TestCanTransition_RejectsSkippedSteps(t *testing.T) {
	illegal := []struct {
		from, to RideStatus
	}{
		{RideStatusPending, RideStatusArrived},
		{RideStatusPending, RideStatusCompleted},
		{RideStatusAccepted, RideStatusCompleted},
		{RideStatusAccepted, RideStatusPending},
		{RideStatusArrived, RideStatusAccepted},
		{RideStatusArrived, RideStatusPending},
	}

	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be illegal", tc.from, tc.to)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	if !IsValidStatus(RideStatusPassengerNoShow) {
		t.Error("PASSENGER_NO_SHOW should be a valid status")
	}
	if IsValidStatus(RideStatus("IN_TRIP")) {
		t.Error("unknown status should be invalid")
	}
}

func TestLabel(t *testing.T) {
	if got := Label(RideStatusPending); got != "Waiting for driver" {
		t.Errorf("unexpected label for PENDING: %q", got)
	}
	if got := Label(RideStatus("X")); got != "X" {
		t.Errorf("unknown status should fall back to raw value, got %q", got)
	}
}
