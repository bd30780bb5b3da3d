package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/auth"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// IdentityService maps verified Telegram identities to stored users.
type IdentityService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewIdentityService creates a new identity service.
func NewIdentityService(users repository.UserRepository, logger *slog.Logger) *IdentityService {
	return &IdentityService{users: users, logger: logger}
}

// Resolve returns the stored user for a verified Telegram identity, creating
// one with the client role on first contact. A changed non-empty display name
// is written back, last write wins. Repeated calls with the same arguments are
// idempotent.
func (s *IdentityService) Resolve(ctx context.Context, tgUser *auth.TelegramUser) (*domain.User, error) {
	name := tgUser.DisplayName()

	user, err := s.users.GetByTelegramID(ctx, tgUser.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("resolve user: %w", err)
		}
		created, err := s.users.Create(ctx, tgUser.ID, name)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.InfoContext(ctx, "new user registered",
			slog.Int64("user_id", created.ID),
		)
		return created, nil
	}

	if name != "" && name != user.Name {
		if err := s.users.UpdateName(ctx, user.ID, name); err != nil {
			return nil, fmt.Errorf("update user name: %w", err)
		}
		user.Name = name
	}
	return user, nil
}
