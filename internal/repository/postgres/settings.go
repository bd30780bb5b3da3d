package postgres

import (
	"context"
	"fmt"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/database"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

const settingsColumns = "id, user_id, enabled, reminder_time, therapist_mode, batch_time, created_at, updated_at"

// SettingsRepository implements repository.SettingsRepository using PostgreSQL.
// Users without a stored row behave as if they had the defaults; the reminder
// and digest queries fold the defaults in with COALESCE so lazily-created rows
// and absent rows act the same.
type SettingsRepository struct {
	pool database.DBTX
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool database.DBTX) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetOrCreate returns the user's settings, inserting the default row on first
// access. The insert is idempotent under concurrent callers.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	query := `
		INSERT INTO notification_settings (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + settingsColumns

	var s domain.NotificationSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.Enabled,
		&s.ReminderTime,
		&s.TherapistMode,
		&s.BatchTime,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create settings: %w", err)
	}
	return &s, nil
}

// Update persists the mutable settings fields.
func (r *SettingsRepository) Update(ctx context.Context, settings *domain.NotificationSettings) error {
	query := `
		UPDATE notification_settings
		SET enabled = $1, reminder_time = $2, therapist_mode = $3, batch_time = $4, updated_at = NOW()
		WHERE user_id = $5`

	ct, err := r.pool.Exec(ctx, query,
		settings.Enabled,
		settings.ReminderTime,
		settings.TherapistMode,
		settings.BatchTime,
		settings.UserID,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("settings", fmt.Sprintf("%d", settings.UserID))
	}
	return nil
}

// ListClientsDueReminder returns every client whose effective reminder time
// equals clock with notifications enabled, with their entry count for date.
func (r *SettingsRepository) ListClientsDueReminder(ctx context.Context, clock, date string) ([]repository.ReminderTarget, error) {
	query := `
		SELECT u.id, u.telegram_id, u.name,
		       (SELECT count(*) FROM journal_entries e WHERE e.user_id = u.id AND e.entry_date = $2)
		FROM users u
		LEFT JOIN notification_settings s ON s.user_id = u.id
		WHERE u.role = 'client'
		  AND COALESCE(s.enabled, TRUE)
		  AND COALESCE(s.reminder_time, '20:00') = $1
		ORDER BY u.id`

	rows, err := r.pool.Query(ctx, query, clock, date)
	if err != nil {
		return nil, fmt.Errorf("list clients due reminder: %w", err)
	}
	defer rows.Close()

	targets := make([]repository.ReminderTarget, 0)
	for rows.Next() {
		var t repository.ReminderTarget
		if err := rows.Scan(&t.UserID, &t.TelegramID, &t.Name, &t.EntryCount); err != nil {
			return nil, fmt.Errorf("scan reminder target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminder targets: %w", err)
	}
	return targets, nil
}

// ListTherapistsDueDigest returns every therapist in batch_digest mode whose
// effective batch time equals clock with notifications enabled. The default
// mode is per_client, so therapists without a stored row are never due.
func (r *SettingsRepository) ListTherapistsDueDigest(ctx context.Context, clock string) ([]repository.NotifyTarget, error) {
	query := `
		SELECT u.id, u.telegram_id, u.name
		FROM users u
		JOIN notification_settings s ON s.user_id = u.id
		WHERE u.role = 'therapist'
		  AND s.enabled
		  AND s.therapist_mode = 'batch_digest'
		  AND s.batch_time = $1
		ORDER BY u.id`

	return r.scanNotifyTargets(ctx, query, clock)
}

// ListInstantNotifyTherapists returns the client's connected therapists that
// are in per_client mode with notifications enabled.
func (r *SettingsRepository) ListInstantNotifyTherapists(ctx context.Context, clientID int64) ([]repository.NotifyTarget, error) {
	query := `
		SELECT u.id, u.telegram_id, u.name
		FROM relationships rel
		JOIN users u ON u.id = rel.therapist_id
		LEFT JOIN notification_settings s ON s.user_id = u.id
		WHERE rel.client_id = $1
		  AND COALESCE(s.enabled, TRUE)
		  AND COALESCE(s.therapist_mode, 'per_client') = 'per_client'
		ORDER BY u.id`

	return r.scanNotifyTargets(ctx, query, clientID)
}

func (r *SettingsRepository) scanNotifyTargets(ctx context.Context, query string, args ...any) ([]repository.NotifyTarget, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notify targets: %w", err)
	}
	defer rows.Close()

	targets := make([]repository.NotifyTarget, 0)
	for rows.Next() {
		var t repository.NotifyTarget
		if err := rows.Scan(&t.UserID, &t.TelegramID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan notify target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notify targets: %w", err)
	}
	return targets, nil
}
