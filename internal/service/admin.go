package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// AdminService handles manual corrections from the ops dashboard. Overrides
// bypass the lifecycle table on purpose; every one is audited distinctly
// from organic transitions.
type AdminService struct {
	rideRepo repository.RideRepository
	notifier *Notifier
}

// NewAdminService creates a new AdminService.
func NewAdminService(rideRepo repository.RideRepository, notifier *Notifier) *AdminService {
	return &AdminService{rideRepo: rideRepo, notifier: notifier}
}

// OverrideRequest contains the parameters for a manual status correction.
type OverrideRequest struct {
	RideID      string
	Status      domain.RideStatus
	Note        string
	DriverName  string
	DriverPhone string
}

// Override forces a ride into the given status regardless of its current
// one. Driver fields are only overwritten when provided.
func (s *AdminService) Override(ctx context.Context, req OverrideRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if !domain.IsValidStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if err := s.rideRepo.ForceStatus(ctx, req.RideID, req.Status, req.DriverName, req.DriverPhone); err != nil {
		return nil, err
	}

	note := req.Note
	if note == "" {
		note = fmt.Sprintf("manual change from %s", ride.Status)
	}
	if err := s.rideRepo.AppendTransition(ctx, req.RideID, domain.Transition{
		Status: req.Status,
		Note:   "admin override: " + note,
		At:     time.Now(),
	}); err != nil {
		log.Printf("admin: audit write failed for %s: %v", req.RideID, err)
	}

	if s.notifier != nil {
		s.notifier.AdminOverride(ctx, ride, req.Status, note)
	}

	ride.Status = req.Status
	if req.DriverName != "" {
		ride.DriverName = req.DriverName
	}
	if req.DriverPhone != "" {
		ride.DriverPhone = req.DriverPhone
	}
	return ride, nil
}
