package service

import (
	"context"
	"log"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// ExpiryService periodically closes PENDING rides that no driver picked up
// within the configured window, moving them to NO_DRIVER_AVAILABLE.
type ExpiryService struct {
	rideRepo      repository.RideRepository
	notifier      *Notifier
	pendingWindow time.Duration
	sweepInterval time.Duration
}

// NewExpiryService creates a new ExpiryService. A zero pendingWindow
// disables it.
func NewExpiryService(rideRepo repository.RideRepository, notifier *Notifier, pendingWindow, sweepInterval time.Duration) *ExpiryService {
	return &ExpiryService{
		rideRepo:      rideRepo,
		notifier:      notifier,
		pendingWindow: pendingWindow,
		sweepInterval: sweepInterval,
	}
}

// Enabled reports whether the sweep is configured to run.
func (s *ExpiryService) Enabled() bool {
	return s.pendingWindow > 0
}

// Run sweeps on a ticker until the context is cancelled.
func (s *ExpiryService) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("expiry: sweep failed: %v", err)
			}
		}
	}
}

// Sweep expires all PENDING rides created before the window cutoff and
// returns the IDs it closed.
func (s *ExpiryService) Sweep(ctx context.Context) ([]string, error) {
	cutoff := time.Now().Add(-s.pendingWindow)

	expired, err := s.rideRepo.ExpirePending(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, rideID := range expired {
		if err := s.rideRepo.AppendTransition(ctx, rideID, domain.Transition{
			Status: domain.RideStatusNoDriverAvailable,
			Note:   "No driver accepted within the pending window",
			At:     now,
		}); err != nil {
			log.Printf("expiry: audit write failed for %s: %v", rideID, err)
		}
		if s.notifier != nil {
			s.notifier.RideExpired(ctx, rideID)
		}
	}

	return expired, nil
}
