package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrMissingFields is returned when required booking fields are absent.
	ErrMissingFields = errors.New("pickup, dropoff and phone are required")

	// ErrRideAlreadyTerminal is returned when acting on a ride that has
	// reached a terminal status.
	ErrRideAlreadyTerminal = errors.New("ride is already in a terminal state")

	// ErrRideNotPending is returned when an accept loses the race or the
	// ride was already taken.
	ErrRideNotPending = errors.New("ride is no longer available")

	// ErrAcceptInProgress is returned when another accept attempt holds the
	// lock for the same ride.
	ErrAcceptInProgress = errors.New("ride accept already in progress")

	// ErrIllegalTransition is returned when the requested status change is
	// not a legal lifecycle edge.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidStatus is returned when a status value is not one of the
	// enumerated set.
	ErrInvalidStatus = errors.New("invalid ride status")

	// ErrDriverNotVerified is returned when the verification gate is on and
	// the accepting driver has not shared a phone number.
	ErrDriverNotVerified = errors.New("driver has not verified a phone number")

	// ErrEmptyMessage is returned when a chat message has no text.
	ErrEmptyMessage = errors.New("message text is empty")
)
