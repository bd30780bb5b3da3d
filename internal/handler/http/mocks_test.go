package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	notifiermock "github.com/orlengos-star/Your-Day-MiniApp/internal/notifier/mock"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/health"
)

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, telegramID int64, name string) (*domain.User, error) {
	args := m.Called(ctx, telegramID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdateName(ctx context.Context, id int64, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

type mockInviteRepo struct {
	mock.Mock
}

func (m *mockInviteRepo) Create(ctx context.Context, invite *domain.Invite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *mockInviteRepo) GetValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invite, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invite), args.Error(1)
}

type mockRelationshipRepo struct {
	mock.Mock
}

func (m *mockRelationshipRepo) GetByID(ctx context.Context, id int64) (*domain.Relationship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipRepo) GetByPair(ctx context.Context, clientID, therapistID int64) (*domain.Relationship, error) {
	args := m.Called(ctx, clientID, therapistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipRepo) CreateFromInvite(ctx context.Context, invite *domain.Invite, clientID, therapistID int64, promote bool, now time.Time) (*domain.Relationship, error) {
	args := m.Called(ctx, invite, clientID, therapistID, promote, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRelationshipRepo) ListClientsOf(ctx context.Context, therapistID int64) ([]domain.ConnectedClient, error) {
	args := m.Called(ctx, therapistID)
	return args.Get(0).([]domain.ConnectedClient), args.Error(1)
}

func (m *mockRelationshipRepo) ListTherapistsOf(ctx context.Context, clientID int64) ([]domain.ConnectedClient, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.ConnectedClient), args.Error(1)
}

type mockEntryRepo struct {
	mock.Mock
}

func (m *mockEntryRepo) Create(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockEntryRepo) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *mockEntryRepo) ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.Entry, error) {
	args := m.Called(ctx, userID, month, limit)
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *mockEntryRepo) CountForDate(ctx context.Context, userID int64, date string) (int, error) {
	args := m.Called(ctx, userID, date)
	return args.Int(0), args.Error(1)
}

func (m *mockEntryRepo) Update(ctx context.Context, entry *domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockEntryRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEntryRepo) CountByClientOnDate(ctx context.Context, therapistID int64, date string) ([]domain.ClientEntryCount, error) {
	args := m.Called(ctx, therapistID, date)
	return args.Get(0).([]domain.ClientEntryCount), args.Error(1)
}

type mockRatingRepo struct {
	mock.Mock
}

func (m *mockRatingRepo) GetByOwnerAndDate(ctx context.Context, userID int64, date string) (*domain.DayRating, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayRating), args.Error(1)
}

func (m *mockRatingRepo) ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.DayRating, error) {
	args := m.Called(ctx, userID, month, limit)
	return args.Get(0).([]domain.DayRating), args.Error(1)
}

func (m *mockRatingRepo) UpsertClientRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error) {
	args := m.Called(ctx, userID, date, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayRating), args.Error(1)
}

func (m *mockRatingRepo) UpsertTherapistRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error) {
	args := m.Called(ctx, userID, date, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DayRating), args.Error(1)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationSettings), args.Error(1)
}

func (m *mockSettingsRepo) Update(ctx context.Context, settings *domain.NotificationSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *mockSettingsRepo) ListClientsDueReminder(ctx context.Context, clock, date string) ([]repository.ReminderTarget, error) {
	args := m.Called(ctx, clock, date)
	return args.Get(0).([]repository.ReminderTarget), args.Error(1)
}

func (m *mockSettingsRepo) ListTherapistsDueDigest(ctx context.Context, clock string) ([]repository.NotifyTarget, error) {
	args := m.Called(ctx, clock)
	return args.Get(0).([]repository.NotifyTarget), args.Error(1)
}

func (m *mockSettingsRepo) ListInstantNotifyTherapists(ctx context.Context, clientID int64) ([]repository.NotifyTarget, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]repository.NotifyTarget), args.Error(1)
}

// ---------------------------------------------------------------------------
// Test harness
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

const (
	testBotToken = "12345:test-bot-token"
	testAppLink  = "https://t.me/yourday_bot/app"
)

// fixture holds the mocks behind a fully wired router.
type fixture struct {
	users         *mockUserRepo
	invites       *mockInviteRepo
	relationships *mockRelationshipRepo
	entries       *mockEntryRepo
	ratings       *mockRatingRepo
	settings      *mockSettingsRepo
	notifier      *notifiermock.Notifier
	router        http.Handler
}

// newFixture wires real services over mock repositories and mounts the
// production router in the given environment.
func newFixture(environment string) *fixture {
	f := &fixture{
		users:         new(mockUserRepo),
		invites:       new(mockInviteRepo),
		relationships: new(mockRelationshipRepo),
		entries:       new(mockEntryRepo),
		ratings:       new(mockRatingRepo),
		settings:      new(mockSettingsRepo),
		notifier:      new(notifiermock.Notifier),
	}

	logger := testLogger()
	authorizer := service.NewAuthorizer(f.relationships)
	identity := service.NewIdentityService(f.users, logger)

	f.router = NewRouter(RouterDeps{
		Journal:       service.NewJournalService(f.entries, f.settings, authorizer, f.notifier, testAppLink, logger),
		Ratings:       service.NewRatingService(f.ratings, authorizer, logger),
		Pairing:       service.NewPairingService(f.users, f.invites, f.relationships, "yourday_bot", logger),
		Settings:      service.NewSettingsService(f.settings, logger),
		Authenticator: NewAuthenticator(identity, testBotToken, environment, logger),
		Health:        health.NewHandler(),
		CORSOrigins:   []string{"*"},
		Logger:        logger,
	})
	return f
}

// asUser arranges the identity lookup for a dev-bypass request and returns
// the stored user the middleware will resolve to.
func (f *fixture) asUser(user *domain.User) *domain.User {
	f.users.On("GetByTelegramID", mock.Anything, user.TelegramID).Return(user, nil)
	return user
}

func devClient() *domain.User {
	return &domain.User{ID: 1, TelegramID: 111, Name: "Alice", Role: domain.RoleClient}
}

func devTherapist() *domain.User {
	return &domain.User{ID: 2, TelegramID: 222, Name: "Dr. Lee", Role: domain.RoleTherapist}
}
