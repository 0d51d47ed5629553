package repository

import (
	"context"

	"dispatch/internal/domain"
)

// DriverRepository defines the persistence operations for the driver
// registry, keyed by the driver's Telegram chat ID.
type DriverRepository interface {
	// Upsert creates or refreshes a driver registry entry.
	Upsert(ctx context.Context, driver *domain.Driver) error

	// GetByChatID retrieves a driver by Telegram chat ID.
	GetByChatID(ctx context.Context, chatID int64) (*domain.Driver, error)
}
