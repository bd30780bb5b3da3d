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

const userColumns = "id, telegram_id, name, role, created_at, updated_at"

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user with the client role.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, name string) (*domain.User, error) {
	query := `
		INSERT INTO users (telegram_id, name, role)
		VALUES ($1, $2, 'client')
		RETURNING ` + userColumns

	user, err := r.scanUser(ctx, query, telegramID, name)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByTelegramID retrieves a user by Telegram ID.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return r.scanUser(ctx, query, telegramID)
}

// UpdateName updates the display name of an existing user.
func (r *UserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	query := `UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", fmt.Sprintf("%d", id))
	}
	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.TelegramID,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
