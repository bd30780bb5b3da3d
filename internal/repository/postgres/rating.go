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

const ratingColumns = "id, user_id, date, client_rating, therapist_rating, created_at, updated_at"

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	pool database.DBTX
}

// NewRatingRepository creates a new PostgreSQL-backed day rating repository.
func NewRatingRepository(pool database.DBTX) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// GetByOwnerAndDate retrieves the rating row for one user and date.
func (r *RatingRepository) GetByOwnerAndDate(ctx context.Context, userID int64, date string) (*domain.DayRating, error) {
	query := `SELECT ` + ratingColumns + ` FROM day_ratings WHERE user_id = $1 AND date = $2`
	return r.scanRating(ctx, query, userID, date)
}

// ListByOwner returns the owner's ratings, newest first. A non-empty month
// restricts results to dates with that YYYY-MM prefix.
func (r *RatingRepository) ListByOwner(ctx context.Context, userID int64, month string, limit int) ([]domain.DayRating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM day_ratings
		WHERE user_id = $1 AND ($2 = '' OR date LIKE $2 || '-%')
		ORDER BY date DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, month, limit)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.DayRating, 0)
	for rows.Next() {
		var dr domain.DayRating
		if err := rows.Scan(
			&dr.ID,
			&dr.UserID,
			&dr.Date,
			&dr.ClientRating,
			&dr.TherapistRating,
			&dr.CreatedAt,
			&dr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}
	return ratings, nil
}

// UpsertClientRating sets the client side of the day's rating, creating the
// row on first write and overwriting on subsequent writes.
func (r *RatingRepository) UpsertClientRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error) {
	query := `
		INSERT INTO day_ratings (user_id, date, client_rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date)
		DO UPDATE SET client_rating = EXCLUDED.client_rating, updated_at = NOW()
		RETURNING ` + ratingColumns

	return r.scanRating(ctx, query, userID, date, rating)
}

// UpsertTherapistRating sets the therapist side of the day's rating.
func (r *RatingRepository) UpsertTherapistRating(ctx context.Context, userID int64, date string, rating int) (*domain.DayRating, error) {
	query := `
		INSERT INTO day_ratings (user_id, date, therapist_rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date)
		DO UPDATE SET therapist_rating = EXCLUDED.therapist_rating, updated_at = NOW()
		RETURNING ` + ratingColumns

	return r.scanRating(ctx, query, userID, date, rating)
}

func (r *RatingRepository) scanRating(ctx context.Context, query string, args ...any) (*domain.DayRating, error) {
	var dr domain.DayRating
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&dr.ID,
		&dr.UserID,
		&dr.Date,
		&dr.ClientRating,
		&dr.TherapistRating,
		&dr.CreatedAt,
		&dr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	return &dr, nil
}
