package domain

import "time"

// Driver is a registry entry keyed by the driver's Telegram chat ID.
// Drivers are created or refreshed on their first successful accept; the
// registry backs the optional phone-verification gate on accept events.
type Driver struct {
	ChatID    int64
	Name      string
	Username  string
	Phone     string
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
