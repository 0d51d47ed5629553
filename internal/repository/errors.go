package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStaleStatus is returned when a conditional status update matched
	// the ride but the expected current status no longer held.
	ErrStaleStatus = errors.New("ride status changed since read")
)
