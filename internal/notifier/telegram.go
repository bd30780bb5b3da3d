package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/orlengos-star/Your-Day-MiniApp/pkg/httpclient"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages through the Telegram Bot API. The HTTP
// client never retries a send (a duplicate reminder is worse than a missed
// one) and a circuit breaker shields the service when Telegram is down.
type TelegramNotifier struct {
	client   *httpclient.CircuitBreakerClient
	botToken string
	apiBase  string
	logger   *slog.Logger
}

// NewTelegramNotifier creates a Bot API notifier for the given bot token.
func NewTelegramNotifier(botToken string, logger *slog.Logger) *TelegramNotifier {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 10 * time.Second
	cfg.MaxRetries = 0

	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("telegram"),
		logger,
	)

	return &TelegramNotifier{
		client:   cb,
		botToken: botToken,
		apiBase:  telegramAPIBase,
		logger:   logger,
	}
}

// WithAPIBase overrides the Bot API base URL. Used by tests.
func (n *TelegramNotifier) WithAPIBase(base string) *TelegramNotifier {
	cpy := *n
	cpy.apiBase = base
	return &cpy
}

type inlineKeyboardButton struct {
	Text   string     `json:"text"`
	WebApp *webAppURL `json:"web_app,omitempty"`
}

type webAppURL struct {
	URL string `json:"url"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one message via the sendMessage Bot API method.
func (n *TelegramNotifier) Send(ctx context.Context, recipientTelegramID int64, text, actionLink string) error {
	reqBody := sendMessageRequest{
		ChatID: recipientTelegramID,
		Text:   text,
	}
	if actionLink != "" {
		reqBody.ReplyMarkup = &replyMarkup{
			InlineKeyboard: [][]inlineKeyboardButton{
				{{Text: "Open", WebApp: &webAppURL{URL: actionLink}}},
			},
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	resp, err := n.client.Post(ctx, url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	var apiResp sendMessageResponse
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sendMessage response: %w", err)
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("decode sendMessage response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram rejected message: %s", apiResp.Description)
	}

	n.logger.DebugContext(ctx, "telegram message sent",
		slog.Int64("recipient", recipientTelegramID),
	)
	return nil
}
