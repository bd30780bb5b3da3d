package service

import (
	"context"
	"log/slog"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// SettingsService reads and writes notification settings. The defaults are
// materialized on first access.
type SettingsService struct {
	settings repository.SettingsRepository
	logger   *slog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(settings repository.SettingsRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{settings: settings, logger: logger}
}

// Get returns the actor's settings, creating the default row on first read.
func (s *SettingsService) Get(ctx context.Context, actor *domain.User) (*domain.NotificationSettings, error) {
	return s.settings.GetOrCreate(ctx, actor.ID)
}

// UpdateSettingsInput holds the optional settings fields to change.
type UpdateSettingsInput struct {
	Enabled       *bool   `json:"enabled"`
	ReminderTime  *string `json:"reminder_time"`
	TherapistMode *string `json:"therapist_mode"`
	BatchTime     *string `json:"batch_time"`
}

// Update applies the provided fields on top of the actor's current settings.
func (s *SettingsService) Update(ctx context.Context, actor *domain.User, input UpdateSettingsInput) (*domain.NotificationSettings, error) {
	current, err := s.settings.GetOrCreate(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.Enabled != nil {
		current.Enabled = *input.Enabled
	}
	if input.ReminderTime != nil {
		if !domain.ValidClock(*input.ReminderTime) {
			return nil, apperrors.InvalidInput("reminder_time must be HH:MM")
		}
		current.ReminderTime = *input.ReminderTime
	}
	if input.TherapistMode != nil {
		mode := domain.TherapistMode(*input.TherapistMode)
		if !mode.Valid() {
			return nil, apperrors.InvalidInput("therapist_mode must be per_client or batch_digest")
		}
		current.TherapistMode = mode
	}
	if input.BatchTime != nil {
		if !domain.ValidClock(*input.BatchTime) {
			return nil, apperrors.InvalidInput("batch_time must be HH:MM")
		}
		current.BatchTime = *input.BatchTime
	}

	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
