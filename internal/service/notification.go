package service

import (
	"context"
	"fmt"
	"log"

	"dispatch/internal/domain"
	"dispatch/internal/telegram"
)

// BotAPI is the Telegram surface the services depend on.
// This interface allows for testing with mock implementations.
type BotAPI interface {
	Enabled() bool
	SendMessage(ctx context.Context, chatID int64, text string, keyboard telegram.Keyboard) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard telegram.Keyboard) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// OpsWebhook is the team-chat sink for operational notices.
type OpsWebhook interface {
	Enabled() bool
	Post(ctx context.Context, text string) error
}

// Notifier fans ride events out to the drivers group, individual driver
// chats and the team webhook. Every call is fire-and-forget: failures are
// logged and swallowed, and an unconfigured sink silently no-ops. A ride
// transition is durable before any of this runs and is never rolled back by
// a delivery failure.
type Notifier struct {
	bot       BotAPI
	ops       OpsWebhook
	opsChatID int64
}

// NewNotifier creates a new Notifier. The ops chat ID is the Telegram group
// where new ride requests are offered to drivers.
func NewNotifier(bot BotAPI, ops OpsWebhook, opsChatID int64) *Notifier {
	return &Notifier{bot: bot, ops: ops, opsChatID: opsChatID}
}

// RideRequested offers a new ride to the drivers group with an accept button
// and posts an ops notice.
func (n *Notifier) RideRequested(ctx context.Context, ride *domain.Ride) {
	text := fmt.Sprintf(
		"🚖 *NEW RIDE REQUEST*\n\n📍 *From:* %s\n🏁 *To:* %s\n💰 *Price:* %s\n\n👇 Click below to Accept",
		ride.Pickup, ride.Dropoff, ride.PriceLabel,
	)
	keyboard := telegram.Keyboard{{
		{Text: "✅ Accept Ride", CallbackData: telegram.CallbackData(telegram.ActionAccept, ride.ID)},
	}}
	n.sendToGroup(ctx, text, keyboard)

	n.post(ctx, fmt.Sprintf(
		"🚖 *New Ride Request*\n• Ride ID: %s\n• From: %s\n• To: %s\n• Price: %s\n• Passenger: %s",
		ride.ID, ride.Pickup, ride.Dropoff, ride.PriceLabel, ride.Phone,
	))
}

// RideAccepted posts an ops notice after a driver takes a ride.
func (n *Notifier) RideAccepted(ctx context.Context, ride *domain.Ride) {
	n.post(ctx, fmt.Sprintf(
		"✅ *Ride Accepted*\n• Ride ID: %s\n• Driver: %s\n• Pickup: %s",
		ride.ID, ride.DriverName, ride.Pickup,
	))
}

// StatusChanged posts an ops notice for arrival and completion events.
func (n *Notifier) StatusChanged(ctx context.Context, ride *domain.Ride, status domain.RideStatus) {
	n.post(ctx, fmt.Sprintf(
		"📣 *Ride Status Updated*\n• Ride ID: %s\n• New Status: %s",
		ride.ID, domain.Label(status),
	))
}

// RideCancelled tells the assigned driver the ride is off, or tells the
// drivers group to stop searching when nobody had accepted yet, and posts an
// ops notice either way.
func (n *Notifier) RideCancelled(ctx context.Context, ride *domain.Ride, cancelledBy domain.SenderRole) {
	if ride.DriverChatID != 0 && cancelledBy == domain.SenderPassenger {
		n.sendToDriver(ctx, ride.DriverChatID, "❌ *RIDE CANCELLED*\n\nThe passenger cancelled the ride.")
	} else if ride.DriverChatID == 0 {
		n.sendToGroup(ctx, fmt.Sprintf("❌ *CANCELLED REQUEST*\n\nRide from %s was cancelled.", ride.Pickup), nil)
	}

	n.post(ctx, fmt.Sprintf(
		"❌ *Ride Cancelled*\n• Ride ID: %s\n• Cancelled by: %s\n• Pickup: %s",
		ride.ID, cancelledBy, ride.Pickup,
	))
}

// AdminOverride posts a distinct ops audit notice for manual corrections.
func (n *Notifier) AdminOverride(ctx context.Context, ride *domain.Ride, status domain.RideStatus, note string) {
	n.post(ctx, fmt.Sprintf(
		"📣 *Admin Override*\n• Ride ID: %s\n• New Status: %s\n• Note: %s\n• Passenger: %s / %s",
		ride.ID, domain.Label(status), note, valueOr(ride.Phone, "N/A"), valueOr(ride.Email, "N/A"),
	))
}

// ChatToDriver relays a passenger message to the assigned driver's chat.
func (n *Notifier) ChatToDriver(ctx context.Context, ride *domain.Ride, text string) {
	n.sendToDriver(ctx, ride.DriverChatID, fmt.Sprintf("💬 *Message from Passenger:*\n\"%s\"", text))
}

// ChatFallback posts a passenger message to the ops channel when no driver
// is assigned yet.
func (n *Notifier) ChatFallback(ctx context.Context, ride *domain.Ride, text string) {
	n.post(ctx, fmt.Sprintf(
		"💬 *Passenger message (no driver assigned)*\n• Ride ID: %s\n• Message: %s",
		ride.ID, text,
	))
}

// UnmatchedDriverMessage posts an ops notice when a driver texts the bot
// with no active ride on record.
func (n *Notifier) UnmatchedDriverMessage(ctx context.Context, chatID int64, text string) {
	n.post(ctx, fmt.Sprintf(
		"⚠️ *Driver message with no active ride*\n• Chat ID: %d\n• Message: %s",
		chatID, text,
	))
}

// RideExpired posts an ops notice after the expiry sweep closes a ride.
func (n *Notifier) RideExpired(ctx context.Context, rideID string) {
	n.post(ctx, fmt.Sprintf(
		"⏰ *Ride Expired*\n• Ride ID: %s\n• New Status: %s",
		rideID, domain.Label(domain.RideStatusNoDriverAvailable),
	))
}

func (n *Notifier) sendToGroup(ctx context.Context, text string, keyboard telegram.Keyboard) {
	if n.bot == nil || !n.bot.Enabled() || n.opsChatID == 0 {
		return
	}
	if _, err := n.bot.SendMessage(ctx, n.opsChatID, text, keyboard); err != nil {
		log.Printf("notifier: telegram group send failed: %v", err)
	}
}

func (n *Notifier) sendToDriver(ctx context.Context, chatID int64, text string) {
	if n.bot == nil || !n.bot.Enabled() || chatID == 0 {
		return
	}
	if _, err := n.bot.SendMessage(ctx, chatID, text, nil); err != nil {
		log.Printf("notifier: telegram driver send failed: %v", err)
	}
}

func (n *Notifier) post(ctx context.Context, text string) {
	if n.ops == nil || !n.ops.Enabled() {
		return
	}
	if err := n.ops.Post(ctx, text); err != nil {
		log.Printf("notifier: ops webhook post failed: %v", err)
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
