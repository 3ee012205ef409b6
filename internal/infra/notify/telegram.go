// Package notify sends run summaries to an operator channel.
package notify

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTelegramBaseURL is the Bot API base URL.
	DefaultTelegramBaseURL = "https://api.telegram.org"

	// DefaultTelegramTimeout for notification requests.
	DefaultTelegramTimeout = 10 * time.Second
)

// Telegram sends messages through a bot to one chat. A zero-configured
// notifier is a no-op, so callers never have to branch on whether
// notifications are set up.
type Telegram struct {
	http   *resty.Client
	base   string
	token  string
	chatID string
}

// TelegramOption is a functional option for configuring the notifier.
type TelegramOption func(*Telegram)

// WithTelegramBaseURL sets a custom base URL (useful for testing).
func WithTelegramBaseURL(url string) TelegramOption {
	return func(t *Telegram) {
		t.base = url
	}
}

// NewTelegram creates a notifier. Empty token or chat ID disables it.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		http:   resty.New().SetTimeout(DefaultTelegramTimeout),
		base:   DefaultTelegramBaseURL,
		token:  token,
		chatID: chatID,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Enabled reports whether the notifier has complete settings.
func (t *Telegram) Enabled() bool {
	return t.token != "" && t.chatID != ""
}

// Notify sends a titled message. Failures are logged, never propagated:
// a notification must not fail the run it reports on.
func (t *Telegram) Notify(title, message string) {
	if !t.Enabled() {
		log.Debug().Str("title", title).Msg("Telegram not configured, skipping notification")
		return
	}

	text := fmt.Sprintf("*%s*\n%s", title, message)
	resp, err := t.http.R().
		SetFormData(map[string]string{
			"chat_id":    t.chatID,
			"text":       text,
			"parse_mode": "Markdown",
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.base, t.token))

	if err != nil {
		log.Warn().Err(err).Msg("Failed to send Telegram notification")
		return
	}
	if resp.IsError() {
		log.Warn().
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Msg("Telegram API rejected notification")
	}
}
