package telegram

import "strings"

// Update is the Telegram webhook event envelope. Exactly one of Message or
// CallbackQuery is set per update.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int      `json:"message_id"`
	From      *User    `json:"from,omitempty"`
	Chat      Chat     `json:"chat"`
	Text      string   `json:"text,omitempty"`
	Contact   *Contact `json:"contact,omitempty"`
}

// User identifies the sender of a message or callback.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat identifies the conversation an update belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Contact is a shared phone number (the driver verification flow).
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	UserID      int64  `json:"user_id,omitempty"`
}

// CallbackQuery is a button click on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// CallbackAction is the closed set of button actions the bot understands.
// Callback payloads are decoded once at the boundary; anything else is
// ActionUnknown and ignored.
type CallbackAction int

const (
	ActionUnknown CallbackAction = iota
	ActionAccept
	ActionArrived
	ActionComplete
	ActionCancel
)

// ParseCallback decodes a callback payload of the form "<action>_<rideID>"
// into its action and ride ID. Unknown or malformed payloads return
// ActionUnknown.
func ParseCallback(data string) (CallbackAction, string) {
	idx := strings.Index(data, "_")
	if idx < 0 {
		return ActionUnknown, ""
	}

	rideID := data[idx+1:]
	if rideID == "" {
		return ActionUnknown, ""
	}

	switch data[:idx] {
	case "accept":
		return ActionAccept, rideID
	case "arrived":
		return ActionArrived, rideID
	case "complete":
		return ActionComplete, rideID
	case "cancel":
		return ActionCancel, rideID
	default:
		return ActionUnknown, ""
	}
}

// CallbackData builds the payload for an inline button.
func CallbackData(action CallbackAction, rideID string) string {
	switch action {
	case ActionAccept:
		return "accept_" + rideID
	case ActionArrived:
		return "arrived_" + rideID
	case ActionComplete:
		return "complete_" + rideID
	case ActionCancel:
		return "cancel_" + rideID
	default:
		return ""
	}
}
