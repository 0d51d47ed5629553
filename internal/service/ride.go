package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/rules"
)

// RideService handles the passenger-facing ride operations: booking,
// cancellation and chat.
type RideService struct {
	rideRepo repository.RideRepository
	region   rules.Region
	notifier *Notifier
}

// NewRideService creates a new RideService.
func NewRideService(rideRepo repository.RideRepository, region rules.Region, notifier *Notifier) *RideService {
	return &RideService{
		rideRepo: rideRepo,
		region:   region,
		notifier: notifier,
	}
}

// CreateRideRequest contains the parameters for booking a ride.
type CreateRideRequest struct {
	Pickup        string
	PickupLat     float64
	PickupLng     float64
	HasPickup     bool
	Dropoff       string
	DropoffLat    float64
	DropoffLng    float64
	HasDropoff    bool
	Phone         string
	Email         string
	RequestedAt   time.Time
	DeclaredMiles float64
}

// CreateRideResponse contains the result of booking a ride.
type CreateRideResponse struct {
	Ride           *domain.Ride
	Fare           float64
	PriceLabel     string
	EstimatedMiles float64
}

// CreateRide validates the booking against the geo/fare rules, computes the
// fare, and writes a new PENDING ride with its initial audit entry. The
// drivers group and ops channel are notified after the write is durable.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*CreateRideResponse, error) {
	if strings.TrimSpace(req.Pickup) == "" ||
		strings.TrimSpace(req.Dropoff) == "" ||
		strings.TrimSpace(req.Phone) == "" {
		return nil, ErrMissingFields
	}

	computed, err := s.region.ValidateBooking(rules.BookingInput{
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		DropoffLat:    req.DropoffLat,
		DropoffLng:    req.DropoffLng,
		HasPickup:     req.HasPickup,
		HasDropoff:    req.HasDropoff,
		DeclaredMiles: req.DeclaredMiles,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fare := s.region.Fare(req.DeclaredMiles)

	ride := &domain.Ride{
		ID:            uuid.New().String(),
		Pickup:        req.Pickup,
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		Dropoff:       req.Dropoff,
		DropoffLat:    req.DropoffLat,
		DropoffLng:    req.DropoffLng,
		Phone:         req.Phone,
		Email:         req.Email,
		RequestedAt:   req.RequestedAt,
		DeclaredMiles: req.DeclaredMiles,
		ComputedMiles: computed,
		Fare:          fare,
		PriceLabel:    rules.PriceLabel(fare),
		Region:        s.region.Name,
		Status:        domain.RideStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.rideRepo.AppendTransition(ctx, ride.ID, domain.Transition{
		Status: domain.RideStatusPending,
		Note:   "Ride requested",
		At:     now,
	}); err != nil {
		log.Printf("ride: audit write failed for %s: %v", ride.ID, err)
	}

	if s.notifier != nil {
		s.notifier.RideRequested(ctx, ride)
	}

	return &CreateRideResponse{
		Ride:           ride,
		Fare:           fare,
		PriceLabel:     ride.PriceLabel,
		EstimatedMiles: computed,
	}, nil
}

// GetRide retrieves the current state of a ride.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	return s.rideRepo.GetByID(ctx, rideID)
}

// GetAll retrieves recent rides for the admin dashboard.
func (s *RideService) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetAll(ctx)
}

// GetTransitions returns a ride's audit trail.
func (s *RideService) GetTransitions(ctx context.Context, rideID string) ([]domain.Transition, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return nil, err
	}
	return s.rideRepo.GetTransitions(ctx, rideID)
}

// CancelRide cancels a ride on behalf of the passenger. Terminal rides are
// rejected; the transition is a compare-and-swap on the status read here.
func (s *RideService) CancelRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminal(ride.Status) {
		return nil, ErrRideAlreadyTerminal
	}

	if err := s.rideRepo.TransitionStatus(ctx, ride.ID, ride.Status, domain.RideStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.rideRepo.AppendTransition(ctx, ride.ID, domain.Transition{
		Status: domain.RideStatusCancelled,
		Note:   "Passenger cancelled",
		At:     time.Now(),
	}); err != nil {
		log.Printf("ride: audit write failed for %s: %v", ride.ID, err)
	}

	if s.notifier != nil {
		s.notifier.RideCancelled(ctx, ride, domain.SenderPassenger)
	}

	ride.Status = domain.RideStatusCancelled
	return ride, nil
}

// SendChat appends a passenger chat message to the ride and relays it to the
// assigned driver. With no driver yet, the message still lands in the store
// and the ops channel is notified instead of failing the call.
func (s *RideService) SendChat(ctx context.Context, rideID, text string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}

	if domain.IsTerminal(ride.Status) {
		return ErrRideAlreadyTerminal
	}

	if err := s.rideRepo.AppendMessage(ctx, ride.ID, domain.ChatMessage{
		Sender: domain.SenderPassenger,
		Text:   text,
		At:     time.Now(),
	}); err != nil {
		return err
	}

	if s.notifier != nil {
		if ride.DriverChatID != 0 {
			s.notifier.ChatToDriver(ctx, ride, text)
		} else {
			s.notifier.ChatFallback(ctx, ride, text)
		}
	}

	return nil
}

// GetMessages returns a ride's chat log.
func (s *RideService) GetMessages(ctx context.Context, rideID string) ([]domain.ChatMessage, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return nil, err
	}
	return s.rideRepo.GetMessages(ctx, rideID)
}
