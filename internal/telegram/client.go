// Package telegram is a thin client for the Telegram Bot API methods this
// service uses: sending and editing messages with inline keyboards and
// acknowledging callback queries. Delivery is best-effort; the bot platform
// offers no delivery guarantee either.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// InlineButton is one button on an inline keyboard.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Keyboard is rows of inline buttons.
type Keyboard [][]InlineButton

// Client calls the Telegram Bot API. A client constructed with an empty
// token is disabled: every call silently no-ops so missing configuration
// never breaks a ride transition.
type Client struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Telegram client for the given bot token. An empty
// token yields a disabled client.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBase creates a client pointed at a custom API base URL.
func NewClientWithBase(token, apiBase string) *Client {
	c := NewClient(token)
	c.apiBase = apiBase
	return c
}

// Enabled reports whether the client has a bot token configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// SendMessage sends a Markdown message to a chat, optionally with an inline
// keyboard. Returns the sent message ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}

	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if len(keyboard) > 0 {
		payload["reply_markup"] = map[string]any{"inline_keyboard": keyboard}
	}

	var result struct {
		MessageID int `json:"message_id"`
	}
	if err := c.call(ctx, "sendMessage", payload, &result); err != nil {
		return 0, err
	}
	return result.MessageID, nil
}

// EditMessageText rewrites a previously sent message and replaces its inline
// keyboard. An empty keyboard removes the buttons.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error {
	if !c.Enabled() {
		return nil
	}

	if keyboard == nil {
		keyboard = Keyboard{}
	}
	payload := map[string]any{
		"chat_id":      chatID,
		"message_id":   messageID,
		"text":         text,
		"parse_mode":   "Markdown",
		"reply_markup": map[string]any{"inline_keyboard": keyboard},
	}

	return c.call(ctx, "editMessageText", payload, nil)
}

// AnswerCallbackQuery stops the loading spinner on a clicked button.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	if !c.Enabled() {
		return nil
	}

	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

// call performs one Bot API request and decodes the result into out when the
// caller wants it.
func (c *Client) call(ctx context.Context, method string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("telegram %s: decoding response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: %s", method, envelope.Description)
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decoding result: %w", method, err)
		}
	}
	return nil
}
