package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/telegram"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is an in-memory RideRepository with the same
// compare-and-swap semantics as the Postgres implementation.
type MockRideRepository struct {
	mu          sync.RWMutex
	rides       map[string]*domain.Ride
	transitions map[string][]domain.Transition
	messages    map[string][]domain.ChatMessage

	// Counters for verification
	CreateCallCount     int32
	AcceptCallCount     int32
	TransitionCallCount int32

	// Error injection
	CreateError           error
	AcceptError           error
	TransitionError       error
	AppendTransitionError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides:       make(map[string]*domain.Ride),
		transitions: make(map[string][]domain.Transition),
		messages:    make(map[string][]domain.ChatMessage),
	}
}

// AddRide seeds a ride into the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rides := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		rides = append(rides, &copy)
	}
	return rides, nil
}

func (m *MockRideRepository) Accept(ctx context.Context, rideID string, driver *domain.Driver) error {
	atomic.AddInt32(&m.AcceptCallCount, 1)
	if m.AcceptError != nil {
		return m.AcceptError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending {
		return repository.ErrStaleStatus
	}
	ride.Status = domain.RideStatusAccepted
	ride.DriverName = driver.Name
	ride.DriverPhone = driver.Phone
	ride.DriverChatID = driver.ChatID
	ride.UpdatedAt = time.Now()
	return nil
}

func (m *MockRideRepository) TransitionStatus(ctx context.Context, rideID string, from, to domain.RideStatus) error {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return m.TransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != from {
		return repository.ErrStaleStatus
	}
	ride.Status = to
	ride.UpdatedAt = time.Now()
	return nil
}

func (m *MockRideRepository) ForceStatus(ctx context.Context, rideID string, to domain.RideStatus, driverName, driverPhone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = to
	if driverName != "" {
		ride.DriverName = driverName
	}
	if driverPhone != "" {
		ride.DriverPhone = driverPhone
	}
	ride.UpdatedAt = time.Now()
	return nil
}

func (m *MockRideRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []string
	for id, ride := range m.rides {
		if ride.Status == domain.RideStatusPending && ride.CreatedAt.Before(cutoff) {
			ride.Status = domain.RideStatusNoDriverAvailable
			ride.UpdatedAt = time.Now()
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (m *MockRideRepository) AppendTransition(ctx context.Context, rideID string, tr domain.Transition) error {
	if m.AppendTransitionError != nil {
		return m.AppendTransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[rideID] = append(m.transitions[rideID], tr)
	return nil
}

func (m *MockRideRepository) GetTransitions(ctx context.Context, rideID string) ([]domain.Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Transition(nil), m.transitions[rideID]...), nil
}

func (m *MockRideRepository) AppendMessage(ctx context.Context, rideID string, msg domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[rideID] = append(m.messages[rideID], msg)
	return nil
}

func (m *MockRideRepository) GetMessages(ctx context.Context, rideID string) ([]domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ChatMessage(nil), m.messages[rideID]...), nil
}

func (m *MockRideRepository) GetActiveByDriverChatID(ctx context.Context, chatID int64) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ride := range m.rides {
		if ride.DriverChatID != chatID {
			continue
		}
		if ride.Status == domain.RideStatusAccepted || ride.Status == domain.RideStatusArrived {
			copy := *ride
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is an in-memory DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[int64]*domain.Driver

	UpsertCallCount int32
	UpsertError     error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[int64]*domain.Driver),
	}
}

// AddDriver seeds a driver into the registry.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ChatID] = driver
}

func (m *MockDriverRepository) Upsert(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ChatID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByChatID(ctx context.Context, chatID int64) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[chatID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory accept lock.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) AcquireAcceptLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[rideID] {
		return false, nil
	}
	m.held[rideID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseAcceptLock(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, rideID)
	return nil
}

// Hold marks a lock as already taken, simulating a concurrent accept.
func (m *MockLockStore) Hold(rideID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[rideID] = true
}

// MockDedupStore is an in-memory webhook dedup store.
type MockDedupStore struct {
	mu   sync.Mutex
	seen map[int64]bool
}

// NewMockDedupStore creates a new mock dedup store.
func NewMockDedupStore() *MockDedupStore {
	return &MockDedupStore{seen: make(map[int64]bool)}
}

func (m *MockDedupStore) MarkUpdate(ctx context.Context, updateID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[updateID] {
		return false, nil
	}
	m.seen[updateID] = true
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK OUTBOUND CLIENTS
// ──────────────────────────────────────────────

// SentMessage records one SendMessage call.
type SentMessage struct {
	ChatID   int64
	Text     string
	Keyboard telegram.Keyboard
}

// EditedMessage records one EditMessageText call.
type EditedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  telegram.Keyboard
}

// MockBotAPI records outbound Telegram calls.
type MockBotAPI struct {
	mu       sync.Mutex
	Sent     []SentMessage
	Edited   []EditedMessage
	Answered []string

	SendError error
}

// NewMockBotAPI creates a new mock bot.
func NewMockBotAPI() *MockBotAPI {
	return &MockBotAPI{}
}

func (m *MockBotAPI) Enabled() bool { return true }

func (m *MockBotAPI) SendMessage(ctx context.Context, chatID int64, text string, keyboard telegram.Keyboard) (int, error) {
	if m.SendError != nil {
		return 0, m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return len(m.Sent), nil
}

func (m *MockBotAPI) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard telegram.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edited = append(m.Edited, EditedMessage{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: keyboard})
	return nil
}

func (m *MockBotAPI) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answered = append(m.Answered, callbackID)
	return nil
}

// MockOpsWebhook records outbound ops notices.
type MockOpsWebhook struct {
	mu    sync.Mutex
	Posts []string

	PostError error
}

// NewMockOpsWebhook creates a new mock ops webhook.
func NewMockOpsWebhook() *MockOpsWebhook {
	return &MockOpsWebhook{}
}

func (m *MockOpsWebhook) Enabled() bool { return true }

func (m *MockOpsWebhook) Post(ctx context.Context, text string) error {
	if m.PostError != nil {
		return m.PostError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posts = append(m.Posts, text)
	return nil
}
