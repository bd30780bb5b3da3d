package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/database"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

const entryColumns = "id, user_id, text, entry_date, therapist_comments, is_highlighted, created_at, updated_at"

// EntryRepository implements repository.EntryRepository using PostgreSQL.
type EntryRepository struct {
	pool database.DBTX
}

// NewEntryRepository creates a new PostgreSQL-backed journal entry repository.
func NewEntryRepository(pool database.DBTX) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts a new journal entry.
func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := `
		INSERT INTO journal_entries (user_id, text, entry_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.Text,
		entry.EntryDate,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by its ID.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1`

	var e domain.Entry
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.UserID,
		&e.Text,
		&e.EntryDate,
		&e.TherapistComments,
		&e.IsHighlighted,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return &e, nil
}

// ListByOwner returns the owner's entries, newest first. A non-empty month
// restricts results to entry dates with that YYYY-MM prefix.
func (r *EntryRepository) ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE user_id = $1 AND ($2 = '' OR entry_date LIKE $2 || '-%')
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, month, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.Entry, 0)
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Text,
			&e.EntryDate,
			&e.TherapistComments,
			&e.IsHighlighted,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, nil
}

// CountForDate returns how many entries the user wrote on a given date.
func (r *EntryRepository) CountForDate(ctx context.Context, userID int64, date string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM journal_entries WHERE user_id = $1 AND entry_date = $2`,
		userID, date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Update persists the mutable fields of an entry.
func (r *EntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	query := `
		UPDATE journal_entries
		SET text = $1, therapist_comments = $2, is_highlighted = $3, updated_at = NOW()
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query,
		entry.Text,
		entry.TherapistComments,
		entry.IsHighlighted,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("entry", fmt.Sprintf("%d", entry.ID))
	}
	return nil
}

// Delete removes an entry.
func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("entry", fmt.Sprintf("%d", id))
	}
	return nil
}

// CountByClientOnDate returns per-client entry counts for a therapist's
// connected clients on a given date. Clients with no entries are omitted.
func (r *EntryRepository) CountByClientOnDate(ctx context.Context, therapistID int64, date string) ([]domain.ClientEntryCount, error) {
	query := `
		SELECT u.id, u.name, count(e.id)
		FROM relationships r
		JOIN users u ON u.id = r.client_id
		JOIN journal_entries e ON e.user_id = u.id AND e.entry_date = $2
		WHERE r.therapist_id = $1
		GROUP BY u.id, u.name
		ORDER BY u.name, u.id`

	rows, err := r.pool.Query(ctx, query, therapistID, date)
	if err != nil {
		return nil, fmt.Errorf("count entries by client: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.ClientEntryCount, 0)
	for rows.Next() {
		var c domain.ClientEntryCount
		if err := rows.Scan(&c.ClientID, &c.ClientName, &c.Count); err != nil {
			return nil, fmt.Errorf("scan client count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client count rows: %w", err)
	}
	return counts, nil
}
