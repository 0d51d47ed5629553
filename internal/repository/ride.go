package repository

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// RideRepository defines the persistence operations for rides.
//
// All status changes are conditional on the expected current status, so that
// concurrent writers deterministically yield exactly one winner. The single
// exception is ForceStatus, the admin escape hatch.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves recent rides, newest first.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// Accept atomically moves a PENDING ride to ACCEPTED and denormalizes
	// the driver identity onto it. Returns ErrStaleStatus if the ride is no
	// longer PENDING, ErrNotFound if it does not exist.
	Accept(ctx context.Context, rideID string, driver *domain.Driver) error

	// TransitionStatus atomically moves a ride from the expected status to
	// the next one. Returns ErrStaleStatus when the expectation fails.
	TransitionStatus(ctx context.Context, rideID string, from, to domain.RideStatus) error

	// ForceStatus unconditionally sets a ride's status and optional driver
	// reassignment fields. Admin use only.
	ForceStatus(ctx context.Context, rideID string, to domain.RideStatus, driverName, driverPhone string) error

	// ExpirePending moves every PENDING ride created before the cutoff to
	// NO_DRIVER_AVAILABLE and returns the affected ride IDs.
	ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error)

	// AppendTransition appends an audit-trail entry for a ride.
	AppendTransition(ctx context.Context, rideID string, tr domain.Transition) error

	// GetTransitions returns a ride's audit trail in insertion order.
	GetTransitions(ctx context.Context, rideID string) ([]domain.Transition, error)

	// AppendMessage appends a chat message to a ride.
	AppendMessage(ctx context.Context, rideID string, msg domain.ChatMessage) error

	// GetMessages returns a ride's chat log in insertion order.
	GetMessages(ctx context.Context, rideID string) ([]domain.ChatMessage, error)

	// GetActiveByDriverChatID returns the non-terminal ride currently
	// assigned to the given driver, or ErrNotFound.
	GetActiveByDriverChatID(ctx context.Context, chatID int64) (*domain.Ride, error)
}
