package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
	"dispatch/internal/telegram"
)

const acceptLockTTL = 10 * time.Second

// ErrNotAssignedDriver is returned when a driver event arrives from someone
// other than the ride's assigned driver.
var ErrNotAssignedDriver = errors.New("driver is not assigned to this ride")

// DispatchService translates Telegram bot events into lifecycle transitions:
// button clicks advance ride state, free text lands on the ride's chat log,
// and shared contacts feed the driver verification registry.
type DispatchService struct {
	rideRepo        repository.RideRepository
	driverRepo      repository.DriverRepository
	lockStore       redis.LockStoreInterface
	dedupStore      redis.DedupStoreInterface
	bot             BotAPI
	notifier        *Notifier
	requireVerified bool
}

// NewDispatchService creates a new DispatchService. lockStore, dedupStore
// and bot may be nil in tests.
func NewDispatchService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	lockStore redis.LockStoreInterface,
	dedupStore redis.DedupStoreInterface,
	bot BotAPI,
	notifier *Notifier,
	requireVerified bool,
) *DispatchService {
	return &DispatchService{
		rideRepo:        rideRepo,
		driverRepo:      driverRepo,
		lockStore:       lockStore,
		dedupStore:      dedupStore,
		bot:             bot,
		notifier:        notifier,
		requireVerified: requireVerified,
	}
}

// HandleUpdate processes one webhook update. Redelivered updates are
// detected via the dedup store and acknowledged without replaying side
// effects. The returned error is for server-side logging only; the webhook
// handler always acknowledges to keep the platform from retrying.
func (s *DispatchService) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	if s.dedupStore != nil {
		first, err := s.dedupStore.MarkUpdate(ctx, update.UpdateID)
		if err != nil {
			// Dedup is best-effort; the status preconditions below keep a
			// replayed event from reassigning a ride anyway.
			log.Printf("dispatch: dedup check failed for update %d: %v", update.UpdateID, err)
		} else if !first {
			return nil
		}
	}

	switch {
	case update.CallbackQuery != nil:
		return s.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Contact != nil:
		return s.handleContact(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		return s.handleDriverText(ctx, update.Message)
	default:
		return nil
	}
}

// handleCallback dispatches a button click. The callback is always answered
// so the driver's client stops its loading spinner, success or not.
func (s *DispatchService) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	defer func() {
		if s.bot != nil {
			_ = s.bot.AnswerCallbackQuery(ctx, cb.ID)
		}
	}()

	action, rideID := telegram.ParseCallback(cb.Data)

	switch action {
	case telegram.ActionAccept:
		return s.acceptRide(ctx, cb, rideID)
	case telegram.ActionArrived:
		return s.driverArrived(ctx, cb, rideID)
	case telegram.ActionComplete:
		return s.completeRide(ctx, cb, rideID)
	case telegram.ActionCancel:
		return s.driverCancel(ctx, cb, rideID)
	default:
		return nil
	}
}

// acceptRide assigns the clicking driver to a PENDING ride. The Redis lock
// serializes concurrent clicks; the database compare-and-swap is the
// authority that guarantees exactly one winner.
func (s *DispatchService) acceptRide(ctx context.Context, cb *telegram.CallbackQuery, rideID string) error {
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireAcceptLock(ctx, rideID, acceptLockTTL)
		if err != nil {
			return err
		}
		if !locked {
			return ErrAcceptInProgress
		}
		defer func() { _ = s.lockStore.ReleaseAcceptLock(ctx, rideID) }()
	}

	driver := driverFromUser(cb.From)

	if registered, err := s.driverRepo.GetByChatID(ctx, driver.ChatID); err == nil {
		driver.Phone = registered.Phone
		driver.Verified = registered.Verified
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if s.requireVerified && !driver.Verified {
		return ErrDriverNotVerified
	}

	if err := s.rideRepo.Accept(ctx, rideID, driver); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			// A redelivered click from the winning driver is a success;
			// anyone else lost the race.
			ride, getErr := s.rideRepo.GetByID(ctx, rideID)
			if getErr == nil && ride.Status == domain.RideStatusAccepted && ride.DriverChatID == driver.ChatID {
				s.editCallbackMessage(ctx, cb, acceptedText(driver.Name), afterAcceptKeyboard(rideID))
				return nil
			}
			return ErrRideNotPending
		}
		return err
	}

	if err := s.driverRepo.Upsert(ctx, driver); err != nil {
		log.Printf("dispatch: driver registry upsert failed for chat %d: %v", driver.ChatID, err)
	}

	if err := s.rideRepo.AppendTransition(ctx, rideID, domain.Transition{
		Status: domain.RideStatusAccepted,
		Note:   fmt.Sprintf("Driver %s accepted", driver.Name),
		At:     time.Now(),
	}); err != nil {
		log.Printf("dispatch: audit write failed for %s: %v", rideID, err)
	}

	s.editCallbackMessage(ctx, cb, acceptedText(driver.Name), afterAcceptKeyboard(rideID))

	if s.notifier != nil {
		if ride, err := s.rideRepo.GetByID(ctx, rideID); err == nil {
			s.notifier.RideAccepted(ctx, ride)
		}
	}

	return nil
}

// driverArrived moves an ACCEPTED ride to ARRIVED.
func (s *DispatchService) driverArrived(ctx context.Context, cb *telegram.CallbackQuery, rideID string) error {
	ride, err := s.assignedRide(ctx, cb, rideID)
	if err != nil {
		return err
	}

	if err := s.rideRepo.TransitionStatus(ctx, rideID, domain.RideStatusAccepted, domain.RideStatusArrived); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) && ride.Status == domain.RideStatusArrived {
			s.editCallbackMessage(ctx, cb, arrivedText(), afterArrivedKeyboard(rideID))
			return nil
		}
		return err
	}

	if err := s.rideRepo.AppendTransition(ctx, rideID, domain.Transition{
		Status: domain.RideStatusArrived,
		Note:   "Driver arrived at pickup",
		At:     time.Now(),
	}); err != nil {
		log.Printf("dispatch: audit write failed for %s: %v", rideID, err)
	}

	s.editCallbackMessage(ctx, cb, arrivedText(), afterArrivedKeyboard(rideID))

	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, ride, domain.RideStatusArrived)
	}

	return nil
}

// completeRide moves an ARRIVED ride to COMPLETED.
func (s *DispatchService) completeRide(ctx context.Context, cb *telegram.CallbackQuery, rideID string) error {
	ride, err := s.assignedRide(ctx, cb, rideID)
	if err != nil {
		return err
	}

	if err := s.rideRepo.TransitionStatus(ctx, rideID, domain.RideStatusArrived, domain.RideStatusCompleted); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) && ride.Status == domain.RideStatusCompleted {
			s.editCallbackMessage(ctx, cb, completedText(ride.DriverName), nil)
			return nil
		}
		return err
	}

	if err := s.rideRepo.AppendTransition(ctx, rideID, domain.Transition{
		Status: domain.RideStatusCompleted,
		Note:   "Ride completed",
		At:     time.Now(),
	}); err != nil {
		log.Printf("dispatch: audit write failed for %s: %v", rideID, err)
	}

	s.editCallbackMessage(ctx, cb, completedText(ride.DriverName), nil)

	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, ride, domain.RideStatusCompleted)
	}

	return nil
}

// driverCancel cancels an in-flight ride on the driver's behalf.
func (s *DispatchService) driverCancel(ctx context.Context, cb *telegram.CallbackQuery, rideID string) error {
	ride, err := s.assignedRide(ctx, cb, rideID)
	if err != nil {
		return err
	}

	if ride.Status == domain.RideStatusCancelled {
		return nil
	}
	if !domain.CanTransition(ride.Status, domain.RideStatusCancelled) {
		return ErrIllegalTransition
	}

	if err := s.rideRepo.TransitionStatus(ctx, rideID, ride.Status, domain.RideStatusCancelled); err != nil {
		return err
	}

	if err := s.rideRepo.AppendTransition(ctx, rideID, domain.Transition{
		Status: domain.RideStatusCancelled,
		Note:   "Driver cancelled",
		At:     time.Now(),
	}); err != nil {
		log.Printf("dispatch: audit write failed for %s: %v", rideID, err)
	}

	s.editCallbackMessage(ctx, cb, "❌ *RIDE CANCELLED*\n\nThe driver cancelled this ride.", nil)

	if s.notifier != nil {
		s.notifier.RideCancelled(ctx, ride, domain.SenderDriver)
	}

	return nil
}

// handleContact records a shared phone number and marks the driver verified.
func (s *DispatchService) handleContact(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil {
		return nil
	}

	driver := driverFromUser(*msg.From)
	driver.Phone = msg.Contact.PhoneNumber
	driver.Verified = true

	if err := s.driverRepo.Upsert(ctx, driver); err != nil {
		return err
	}

	if s.bot != nil {
		_, _ = s.bot.SendMessage(ctx, msg.Chat.ID, "✅ Phone number verified. You can now accept rides.", nil)
	}

	return nil
}

// handleDriverText appends driver free text to the chat log of the sender's
// active ride. Messages from senders with no active ride are dropped; the
// ops channel gets a notice so the message is not silently lost.
func (s *DispatchService) handleDriverText(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil {
		return nil
	}

	ride, err := s.rideRepo.GetActiveByDriverChatID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("dispatch: dropping message from chat %d with no active ride", msg.From.ID)
			if s.notifier != nil {
				s.notifier.UnmatchedDriverMessage(ctx, msg.From.ID, msg.Text)
			}
			return nil
		}
		return err
	}

	return s.rideRepo.AppendMessage(ctx, ride.ID, domain.ChatMessage{
		Sender: domain.SenderDriver,
		Text:   msg.Text,
		At:     time.Now(),
	})
}

// assignedRide loads the ride and checks the event comes from its assigned
// driver.
func (s *DispatchService) assignedRide(ctx context.Context, cb *telegram.CallbackQuery, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverChatID == 0 || ride.DriverChatID != cb.From.ID {
		return nil, ErrNotAssignedDriver
	}
	return ride, nil
}

// editCallbackMessage rewrites the bot message the button lived on, swapping
// in the next step's keyboard. Best effort.
func (s *DispatchService) editCallbackMessage(ctx context.Context, cb *telegram.CallbackQuery, text string, keyboard telegram.Keyboard) {
	if s.bot == nil || cb.Message == nil {
		return
	}
	if err := s.bot.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard); err != nil {
		log.Printf("dispatch: edit message failed: %v", err)
	}
}

func driverFromUser(u telegram.User) *domain.Driver {
	name := u.FirstName
	if name == "" {
		name = "Unknown Driver"
	}
	return &domain.Driver{
		ChatID:   u.ID,
		Name:     name,
		Username: u.Username,
	}
}

func acceptedText(driverName string) string {
	return fmt.Sprintf("✅ *RIDE ACCEPTED*\n\nDriver: %s is on the way!", driverName)
}

func arrivedText() string {
	return "📍 *DRIVER ARRIVED*\n\nWaiting for passenger..."
}

func completedText(driverName string) string {
	return fmt.Sprintf("🎉 *RIDE COMPLETED*\n\nGreat job, %s!", driverName)
}

func afterAcceptKeyboard(rideID string) telegram.Keyboard {
	return telegram.Keyboard{
		{{Text: "🏁 Driver Arrived", CallbackData: telegram.CallbackData(telegram.ActionArrived, rideID)}},
		{{Text: "❌ Cancel Ride", CallbackData: telegram.CallbackData(telegram.ActionCancel, rideID)}},
	}
}

func afterArrivedKeyboard(rideID string) telegram.Keyboard {
	return telegram.Keyboard{
		{{Text: "✅ Complete Ride", CallbackData: telegram.CallbackData(telegram.ActionComplete, rideID)}},
		{{Text: "❌ Cancel Ride", CallbackData: telegram.CallbackData(telegram.ActionCancel, rideID)}},
	}
}
