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

// RelationshipRepository implements repository.RelationshipRepository using PostgreSQL.
type RelationshipRepository struct {
	pool database.DBTX
}

// NewRelationshipRepository creates a new PostgreSQL-backed relationship repository.
func NewRelationshipRepository(pool database.DBTX) *RelationshipRepository {
	return &RelationshipRepository{pool: pool}
}

// GetByID retrieves a relationship by its ID.
func (r *RelationshipRepository) GetByID(ctx context.Context, id int64) (*domain.Relationship, error) {
	query := `SELECT id, client_id, therapist_id, created_at FROM relationships WHERE id = $1`
	return r.scanRelationship(ctx, query, id)
}

// GetByPair retrieves the relationship connecting a specific client and therapist.
func (r *RelationshipRepository) GetByPair(ctx context.Context, clientID, therapistID int64) (*domain.Relationship, error) {
	query := `SELECT id, client_id, therapist_id, created_at FROM relationships WHERE client_id = $1 AND therapist_id = $2`
	return r.scanRelationship(ctx, query, clientID, therapistID)
}

// CreateFromInvite consumes the invite and creates the relationship in a
// single transaction. The token is marked used with a guard on used_at and
// expires_at, so two concurrent redeemers cannot both succeed; the loser sees
// zero rows updated and the whole transaction rolls back as not found.
func (r *RelationshipRepository) CreateFromInvite(ctx context.Context, invite *domain.Invite, clientID, therapistID int64, promote bool, now time.Time) (*domain.Relationship, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE invite_tokens
		SET used_at = $1, used_by = $2
		WHERE id = $3 AND used_at IS NULL AND expires_at > $1`,
		now, redeemerID(invite, clientID, therapistID), invite.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("consume invite: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.NotFound("invite", invite.Token)
	}

	if promote {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET role = 'therapist', updated_at = $1 WHERE id = $2`,
			now, therapistID,
		); err != nil {
			return nil, fmt.Errorf("promote therapist: %w", err)
		}
	}

	var rel domain.Relationship
	err = tx.QueryRow(ctx, `
		INSERT INTO relationships (client_id, therapist_id)
		VALUES ($1, $2)
		RETURNING id, client_id, therapist_id, created_at`,
		clientID, therapistID,
	).Scan(&rel.ID, &rel.ClientID, &rel.TherapistID, &rel.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert relationship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit redeem tx: %w", err)
	}
	return &rel, nil
}

// redeemerID picks the user the token was consumed by: the party that is not
// the inviter.
func redeemerID(invite *domain.Invite, clientID, therapistID int64) int64 {
	if invite.InviterID == clientID {
		return therapistID
	}
	return clientID
}

// Delete removes a relationship.
func (r *RelationshipRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM relationships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete relationship: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("relationship", fmt.Sprintf("%d", id))
	}
	return nil
}

// ListClientsOf returns all clients connected to a therapist, ordered by name.
func (r *RelationshipRepository) ListClientsOf(ctx context.Context, therapistID int64) ([]domain.ConnectedClient, error) {
	query := `
		SELECT r.id, u.id, u.telegram_id, u.name
		FROM relationships r
		JOIN users u ON u.id = r.client_id
		WHERE r.therapist_id = $1
		ORDER BY u.name, u.id`

	return r.scanConnected(ctx, query, therapistID)
}

// ListTherapistsOf returns all therapists connected to a client, most recent
// connection first.
func (r *RelationshipRepository) ListTherapistsOf(ctx context.Context, clientID int64) ([]domain.ConnectedClient, error) {
	query := `
		SELECT r.id, u.id, u.telegram_id, u.name
		FROM relationships r
		JOIN users u ON u.id = r.therapist_id
		WHERE r.client_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	return r.scanConnected(ctx, query, clientID)
}

func (r *RelationshipRepository) scanRelationship(ctx context.Context, query string, args ...any) (*domain.Relationship, error) {
	var rel domain.Relationship
	err := r.pool.QueryRow(ctx, query, args...).Scan(&rel.ID, &rel.ClientID, &rel.TherapistID, &rel.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan relationship: %w", err)
	}
	return &rel, nil
}

func (r *RelationshipRepository) scanConnected(ctx context.Context, query string, args ...any) ([]domain.ConnectedClient, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	connections := make([]domain.ConnectedClient, 0)
	for rows.Next() {
		var c domain.ConnectedClient
		if err := rows.Scan(&c.RelationshipID, &c.UserID, &c.TelegramID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan connection row: %w", err)
		}
		connections = append(connections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connection rows: %w", err)
	}
	return connections, nil
}
