package domain

import "time"

// RideStatus represents the current lifecycle status of a ride.
type RideStatus string

const (
	RideStatusPending             RideStatus = "PENDING"
	RideStatusAccepted            RideStatus = "ACCEPTED"
	RideStatusArrived             RideStatus = "ARRIVED"
	RideStatusCompleted           RideStatus = "COMPLETED"
	RideStatusCancelled           RideStatus = "CANCELLED"
	RideStatusFailedPickup        RideStatus = "FAILED_PICKUP"
	RideStatusCommunicationFailed RideStatus = "COMMUNICATION_FAILED"
	RideStatusPassengerNoShow     RideStatus = "PASSENGER_NO_SHOW"
	RideStatusNoDriverAvailable   RideStatus = "NO_DRIVER_AVAILABLE"
)

// SenderRole identifies who authored a chat message on a ride.
type SenderRole string

const (
	SenderPassenger SenderRole = "passenger"
	SenderDriver    SenderRole = "driver"
)

// Ride represents a booked ride. Fare and coordinates are computed once at
// creation and never rewritten afterwards; only status, driver fields and
// UpdatedAt change over the ride's lifetime.
type Ride struct {
	ID            string
	Pickup        string
	PickupLat     float64
	PickupLng     float64
	Dropoff       string
	DropoffLat    float64
	DropoffLng    float64
	Phone         string
	Email         string
	RequestedAt   time.Time
	DeclaredMiles float64
	ComputedMiles float64
	Fare          float64
	PriceLabel    string
	Region        string
	Status        RideStatus
	DriverName    string
	DriverPhone   string
	DriverChatID  int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transition is one append-only entry in a ride's audit trail.
type Transition struct {
	Status RideStatus
	Note   string
	At     time.Time
}

// ChatMessage belongs to a ride, ordered by insertion.
type ChatMessage struct {
	Sender SenderRole
	Text   string
	At     time.Time
}
