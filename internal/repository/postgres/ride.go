package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, pickup, pickup_lat, pickup_lng, dropoff, dropoff_lat, dropoff_lng,
	phone, email, requested_at, declared_miles, computed_miles, fare, price_label, region,
	status, driver_name, driver_phone, driver_chat_id, created_at, updated_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.Pickup,
		ride.PickupLat,
		ride.PickupLng,
		ride.Dropoff,
		ride.DropoffLat,
		ride.DropoffLng,
		ride.Phone,
		ride.Email,
		nullTime(ride.RequestedAt),
		ride.DeclaredMiles,
		ride.ComputedMiles,
		ride.Fare,
		ride.PriceLabel,
		ride.Region,
		ride.Status,
		nullString(ride.DriverName),
		nullString(ride.DriverPhone),
		nullInt64(ride.DriverChatID),
		ride.CreatedAt,
		ride.UpdatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves recent rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Accept atomically moves a PENDING ride to ACCEPTED and denormalizes the
// driver identity onto it. The WHERE clause on status is the compare-and-swap
// that guarantees exactly one winner among concurrent accepts.
func (r *RideRepository) Accept(ctx context.Context, rideID string, driver *domain.Driver) error {
	query := `
		UPDATE rides
		SET status = $1, driver_name = $2, driver_phone = $3, driver_chat_id = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.RideStatusAccepted,
		driver.Name,
		nullString(driver.Phone),
		driver.ChatID,
		time.Now(),
		rideID,
		domain.RideStatusPending,
	)
	if err != nil {
		return err
	}

	return r.checkConditionalUpdate(ctx, result, rideID)
}

// TransitionStatus atomically moves a ride from the expected status to the
// next one.
func (r *RideRepository) TransitionStatus(ctx context.Context, rideID string, from, to domain.RideStatus) error {
	query := `UPDATE rides SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.q.ExecContext(ctx, query, to, time.Now(), rideID, from)
	if err != nil {
		return err
	}

	return r.checkConditionalUpdate(ctx, result, rideID)
}

// checkConditionalUpdate distinguishes a missing ride from a lost
// compare-and-swap when a conditional update matched zero rows.
func (r *RideRepository) checkConditionalUpdate(ctx context.Context, result sql.Result, rideID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, rideID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrStaleStatus
}

// ForceStatus unconditionally sets a ride's status and optional driver
// reassignment fields. Admin use only.
func (r *RideRepository) ForceStatus(ctx context.Context, rideID string, to domain.RideStatus, driverName, driverPhone string) error {
	query := `
		UPDATE rides
		SET status = $1,
		    driver_name = COALESCE($2, driver_name),
		    driver_phone = COALESCE($3, driver_phone),
		    updated_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query, to, nullString(driverName), nullString(driverPhone), time.Now(), rideID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExpirePending moves every PENDING ride created before the cutoff to
// NO_DRIVER_AVAILABLE and returns the affected ride IDs.
func (r *RideRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		UPDATE rides SET status = $1, updated_at = $2
		WHERE status = $3 AND created_at < $4
		RETURNING id
	`

	rows, err := r.q.QueryContext(ctx, query,
		domain.RideStatusNoDriverAvailable,
		time.Now(),
		domain.RideStatusPending,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendTransition appends an audit-trail entry for a ride.
func (r *RideRepository) AppendTransition(ctx context.Context, rideID string, tr domain.Transition) error {
	query := `INSERT INTO ride_transitions (ride_id, status, note, at) VALUES ($1, $2, $3, $4)`

	_, err := r.q.ExecContext(ctx, query, rideID, tr.Status, tr.Note, tr.At)
	return err
}

// GetTransitions returns a ride's audit trail in insertion order.
func (r *RideRepository) GetTransitions(ctx context.Context, rideID string) ([]domain.Transition, error) {
	query := `SELECT status, note, at FROM ride_transitions WHERE ride_id = $1 ORDER BY seq`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []domain.Transition
	for rows.Next() {
		var tr domain.Transition
		if err := rows.Scan(&tr.Status, &tr.Note, &tr.At); err != nil {
			return nil, err
		}
		transitions = append(transitions, tr)
	}
	return transitions, rows.Err()
}

// AppendMessage appends a chat message to a ride.
func (r *RideRepository) AppendMessage(ctx context.Context, rideID string, msg domain.ChatMessage) error {
	query := `INSERT INTO ride_messages (ride_id, sender, text, at) VALUES ($1, $2, $3, $4)`

	_, err := r.q.ExecContext(ctx, query, rideID, msg.Sender, msg.Text, msg.At)
	return err
}

// GetMessages returns a ride's chat log in insertion order.
func (r *RideRepository) GetMessages(ctx context.Context, rideID string) ([]domain.ChatMessage, error) {
	query := `SELECT sender, text, at FROM ride_messages WHERE ride_id = $1 ORDER BY seq`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.Sender, &msg.Text, &msg.At); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetActiveByDriverChatID returns the non-terminal ride currently assigned to
// the given driver, or ErrNotFound.
func (r *RideRepository) GetActiveByDriverChatID(ctx context.Context, chatID int64) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE driver_chat_id = $1 AND status IN ($2, $3)
		ORDER BY updated_at DESC LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, chatID,
		domain.RideStatusAccepted, domain.RideStatusArrived))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var requestedAt sql.NullTime
	var driverName, driverPhone sql.NullString
	var driverChatID sql.NullInt64

	err := row.Scan(
		&ride.ID,
		&ride.Pickup,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.Dropoff,
		&ride.DropoffLat,
		&ride.DropoffLng,
		&ride.Phone,
		&ride.Email,
		&requestedAt,
		&ride.DeclaredMiles,
		&ride.ComputedMiles,
		&ride.Fare,
		&ride.PriceLabel,
		&ride.Region,
		&ride.Status,
		&driverName,
		&driverPhone,
		&driverChatID,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if requestedAt.Valid {
		ride.RequestedAt = requestedAt.Time
	}
	if driverName.Valid {
		ride.DriverName = driverName.String
	}
	if driverPhone.Valid {
		ride.DriverPhone = driverPhone.String
	}
	if driverChatID.Valid {
		ride.DriverChatID = driverChatID.Int64
	}

	return &ride, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullInt64(n int64) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
