package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/database"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

const inviteColumns = "id, token, inviter_id, invite_type, expires_at, used_at, used_by, created_at"

// InviteRepository implements repository.InviteRepository using PostgreSQL.
type InviteRepository struct {
	pool database.DBTX
}

// NewInviteRepository creates a new PostgreSQL-backed invite repository.
func NewInviteRepository(pool database.DBTX) *InviteRepository {
	return &InviteRepository{pool: pool}
}

// Create inserts a new invite token.
func (r *InviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO invite_tokens (token, inviter_id, invite_type, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		invite.Token,
		invite.InviterID,
		invite.InviteType,
		invite.ExpiresAt,
	).Scan(&invite.ID, &invite.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

// GetValidByToken returns the invite only while it is unused and unexpired.
// Absent, used and expired tokens all come back as not found so callers cannot
// distinguish them.
func (r *InviteRepository) GetValidByToken(ctx context.Context, token string, now time.Time) (*domain.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM invite_tokens
		WHERE token = $1 AND used_at IS NULL AND expires_at > $2`

	var i domain.Invite
	err := r.pool.QueryRow(ctx, query, token, now).Scan(
		&i.ID,
		&i.Token,
		&i.InviterID,
		&i.InviteType,
		&i.ExpiresAt,
		&i.UsedAt,
		&i.UsedBy,
		&i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("invite", token)
		}
		return nil, fmt.Errorf("scan invite: %w", err)
	}
	return &i, nil
}
