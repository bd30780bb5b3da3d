// Package notifier delivers outbound Telegram messages.
package notifier

import "context"

// Notifier sends a message to a Telegram user. actionLink, when non-empty, is
// attached as an inline button opening the Mini App.
type Notifier interface {
	Send(ctx context.Context, recipientTelegramID int64, text, actionLink string) error
}
