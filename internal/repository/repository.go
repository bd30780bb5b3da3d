// Package repository defines the persistence interfaces the services depend on.
package repository

import (
	"context"
	"time"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
)

// UserRepository persists users keyed by internal ID and Telegram ID.
type UserRepository interface {
	Create(ctx context.Context, telegramID int64, name string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
}

// InviteRepository persists single-use pairing tokens.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	// GetValidByToken returns the invite only if it is unused and unexpired
	// at now. Absent, used and expired tokens are indistinguishable to the
	// caller; all three come back as not found.
	GetValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invite, error)
}

// RelationshipRepository persists client-therapist connections.
type RelationshipRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Relationship, error)
	GetByPair(ctx context.Context, clientID, therapistID int64) (*domain.Relationship, error)
	// CreateFromInvite atomically consumes the invite, promotes the new
	// therapist when the invite demands it, and inserts the relationship.
	// Everything happens in one transaction; losing a race for the token
	// reports not found.
	CreateFromInvite(ctx context.Context, invite *domain.Invite, clientID, therapistID int64, promote bool, now time.Time) (*domain.Relationship, error)
	Delete(ctx context.Context, id int64) error
	ListClientsOf(ctx context.Context, therapistID int64) ([]domain.ConnectedClient, error)
	ListTherapistsOf(ctx context.Context, clientID int64) ([]domain.ConnectedClient, error)
}

// EntryRepository persists journal entries.
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, id int64) (*domain.Entry, error)
	// ListByOwner returns the owner's entries, newest first. month filters to
	// a YYYY-MM prefix when non-empty.
	ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.Entry, error)
	CountForDate(ctx context.Context, userID int64, date string) (int, error)
	Update(ctx context.Context, entry *domain.Entry) error
	Delete(ctx context.Context, id int64) error
	// CountByClientOnDate returns per-client entry counts for every client
	// connected to the therapist, for entries dated date. Clients without
	// entries that day are omitted.
	CountByClientOnDate(ctx context.Context, therapistID int64, date string) ([]domain.ClientEntryCount, error)
}

// RatingRepository persists per-day ratings.
type RatingRepository interface {
	GetByOwnerAndDate(ctx context.Context, userID int64, date string) (*domain.DayRating, error)
	ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.DayRating, error)
	UpsertClientRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error)
	UpsertTherapistRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error)
}

// ReminderTarget is a client due an evening reminder at a given clock time.
type ReminderTarget struct {
	UserID     int64
	TelegramID int64
	Name       string
	EntryCount int
}

// NotifyTarget is a therapist selected to receive a notification.
type NotifyTarget struct {
	UserID     int64
	TelegramID int64
	Name       string
}

// SettingsRepository persists notification settings. Users without a stored
// row behave as if they had the defaults.
type SettingsRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.NotificationSettings, error)
	Update(ctx context.Context, settings *domain.NotificationSettings) error
	// ListClientsDueReminder returns every client whose effective reminder
	// time equals clock and whose notifications are enabled, along with how
	// many entries they wrote on date.
	ListClientsDueReminder(ctx context.Context, clock, date string) ([]ReminderTarget, error)
	// ListTherapistsDueDigest returns every therapist in batch_digest mode
	// whose effective batch time equals clock and whose notifications are
	// enabled.
	ListTherapistsDueDigest(ctx context.Context, clock string) ([]NotifyTarget, error)
	// ListInstantNotifyTherapists returns the client's connected therapists
	// that are in per_client mode with notifications enabled.
	ListInstantNotifyTherapists(ctx context.Context, clientID int64) ([]NotifyTarget, error)
}
