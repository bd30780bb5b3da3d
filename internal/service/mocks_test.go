package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// --- Mock repositories ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, telegramID int64, name string) (*domain.User, error) {
	args := m.Called(ctx, telegramID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

type mockInviteRepository struct {
	mock.Mock
}

func (m *mockInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *mockInviteRepository) GetValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invite, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invite), args.Error(1)
}

type mockRelationshipRepository struct {
	mock.Mock
}

func (m *mockRelationshipRepository) GetByID(ctx context.Context, id int64) (*domain.Relationship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipRepository) GetByPair(ctx context.Context, clientID, therapistID int64) (*domain.Relationship, error) {
	args := m.Called(ctx, clientID, therapistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipRepository) CreateFromInvite(ctx context.Context, invite *domain.Invite, clientID, therapistID int64, promote bool, now time.Time) (*domain.Relationship, error) {
	args := m.Called(ctx, invite, clientID, therapistID, promote, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRelationshipRepository) ListClientsOf(ctx context.Context, therapistID int64) ([]domain.ConnectedClient, error) {
	args := m.Called(ctx, therapistID)
	return args.Get(0).([]domain.ConnectedClient), args.Error(1)
}

func (m *mockRelationshipRepository) ListTherapistsOf(ctx context.Context, clientID int64) ([]domain.ConnectedClient, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.ConnectedClient), args.Error(1)
}

type mockEntryRepository struct {
	mock.Mock
}

func (m *mockEntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockEntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *mockEntryRepository) ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.Entry, error) {
	args := m.Called(ctx, userID, month, limit)
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *mockEntryRepository) CountForDate(ctx context.Context, userID int64, date string) (int, error) {
	args := m.Called(ctx, userID, date)
	return args.Int(0), args.Error(1)
}

func (m *mockEntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockEntryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEntryRepository) CountByClientOnDate(ctx context.Context, therapistID int64, date string) ([]domain.ClientEntryCount, error) {
	args := m.Called(ctx, therapistID, date)
	return args.Get(0).([]domain.ClientEntryCount), args.Error(1)
}

type mockRatingRepository struct {
	mock.Mock
}

func (m *mockRatingRepository) GetByOwnerAndDate(ctx context.Context, userID int64, date string) (*domain.DayRating, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayRating), args.Error(1)
}

func (m *mockRatingRepository) ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.DayRating, error) {
	args := m.Called(ctx, userID, month, limit)
	return args.Get(0).([]domain.DayRating), args.Error(1)
}

func (m *mockRatingRepository) UpsertClientRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error) {
	args := m.Called(ctx, userID, date, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayRating), args.Error(1)
}

func (m *mockRatingRepository) UpsertTherapistRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error) {
	args := m.Called(ctx, userID, date, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayRating), args.Error(1)
}

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationSettings), args.Error(1)
}

func (m *mockSettingsRepository) Update(ctx context.Context, settings *domain.NotificationSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *mockSettingsRepository) ListClientsDueReminder(ctx context.Context, clock, date string) ([]repository.ReminderTarget, error) {
	args := m.Called(ctx, clock, date)
	return args.Get(0).([]repository.ReminderTarget), args.Error(1)
}

func (m *mockSettingsRepository) ListTherapistsDueDigest(ctx context.Context, clock string) ([]repository.NotifyTarget, error) {
	args := m.Called(ctx, clock)
	return args.Get(0).([]repository.NotifyTarget), args.Error(1)
}

func (m *mockSettingsRepository) ListInstantNotifyTherapists(ctx context.Context, clientID int64) ([]repository.NotifyTarget, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]repository.NotifyTarget), args.Error(1)
}

// --- Fixtures ---

func clientUser() *domain.User {
	return &domain.User{ID: 1, TelegramID: 111, Name: "Alice", Role: domain.RoleClient}
}

func therapistUser() *domain.User {
	return &domain.User{ID: 2, TelegramID: 222, Name: "Dr. Lee", Role: domain.RoleTherapist}
}

func strangerTherapist() *domain.User {
	return &domain.User{ID: 9, TelegramID: 999, Name: "Dr. Stranger", Role: domain.RoleTherapist}
}
