// Package mock provides a testify mock of the notifier interface.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Notifier is a testify mock implementing notifier.Notifier.
type Notifier struct {
	mock.Mock
}

// Send records the call and returns the configured error.
func (m *Notifier) Send(ctx context.Context, recipientTelegramID int64, text, actionLink string) error {
	args := m.Called(ctx, recipientTelegramID, text, actionLink)
	return args.Error(0)
}
