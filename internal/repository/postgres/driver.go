package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of
// repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// Upsert creates or refreshes a driver registry entry. Phone and verified
// flag survive re-registration so a verified driver stays verified.
func (r *DriverRepository) Upsert(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (chat_id, name, username, phone, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (chat_id) DO UPDATE
		SET name = EXCLUDED.name,
		    username = EXCLUDED.username,
		    phone = COALESCE(NULLIF(EXCLUDED.phone, ''), drivers.phone),
		    verified = drivers.verified OR EXCLUDED.verified,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ChatID,
		driver.Name,
		driver.Username,
		driver.Phone,
		driver.Verified,
		time.Now(),
	)
	return err
}

// GetByChatID retrieves a driver by Telegram chat ID.
func (r *DriverRepository) GetByChatID(ctx context.Context, chatID int64) (*domain.Driver, error) {
	query := `
		SELECT chat_id, name, username, phone, verified, created_at, updated_at
		FROM drivers WHERE chat_id = $1
	`

	var driver domain.Driver
	var phone sql.NullString

	err := r.q.QueryRowContext(ctx, query, chatID).Scan(
		&driver.ChatID,
		&driver.Name,
		&driver.Username,
		&phone,
		&driver.Verified,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if phone.Valid {
		driver.Phone = phone.String
	}

	return &driver, nil
}
