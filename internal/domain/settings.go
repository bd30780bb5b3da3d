package domain

import (
	"fmt"
	"time"
)

// TherapistMode selects how a therapist is notified about new client entries.
type TherapistMode string

const (
	// ModePerClient sends one message per new entry as it is created.
	ModePerClient TherapistMode = "per_client"
	// ModeBatchDigest sends one daily digest at the configured batch time.
	ModeBatchDigest TherapistMode = "batch_digest"
)

// Valid reports whether m is one of the known therapist modes.
func (m TherapistMode) Valid() bool {
	return m == ModePerClient || m == ModeBatchDigest
}

// Default notification settings applied when a user has no stored row.
const (
	DefaultReminderTime = "20:00"
	DefaultBatchTime    = "18:00"
)

// NotificationSettings controls the reminder and digest behaviour for one user.
// Times are HH:MM strings in the service's local time.
type NotificationSettings struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	Enabled       bool          `json:"enabled"`
	ReminderTime  string        `json:"reminder_time"`
	TherapistMode TherapistMode `json:"therapist_mode"`
	BatchTime     string        `json:"batch_time"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// DefaultSettings returns the settings a user gets before any customization.
func DefaultSettings(userID int64) NotificationSettings {
	return NotificationSettings{
		UserID:        userID,
		Enabled:       true,
		ReminderTime:  DefaultReminderTime,
		TherapistMode: ModePerClient,
		BatchTime:     DefaultBatchTime,
	}
}

// ValidClock reports whether s is a well-formed HH:MM time of day.
func ValidClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// ClockOf formats t as the HH:MM string used to match reminder times.
func ClockOf(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DateOf formats t as the YYYY-MM-DD string used for entry dates.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
