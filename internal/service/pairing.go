package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// Invite issuance is throttled per user: one token a minute with a small
// burst, enough for honest retries without letting anyone mint tokens in bulk.
const (
	inviteRateLimit = rate.Limit(1.0 / 60)
	inviteRateBurst = 5
)

// InvitePreview is the public view of a redeemable invite.
type InvitePreview struct {
	InviterName string            `json:"inviter_name"`
	InviteType  domain.InviteType `json:"invite_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// PairingService implements the invite lifecycle and relationship management.
type PairingService struct {
	users         repository.UserRepository
	invites       repository.InviteRepository
	relationships repository.RelationshipRepository
	logger        *slog.Logger
	botUsername   string

	mu       sync.Mutex
	limiters map[int64]*rate.Limiter

	now func() time.Time
}

// NewPairingService creates a new pairing service. botUsername is used to
// build shareable t.me invite links.
func NewPairingService(
	users repository.UserRepository,
	invites repository.InviteRepository,
	relationships repository.RelationshipRepository,
	botUsername string,
	logger *slog.Logger,
) *PairingService {
	return &PairingService{
		users:         users,
		invites:       invites,
		relationships: relationships,
		logger:        logger,
		botUsername:   botUsername,
		limiters:      make(map[int64]*rate.Limiter),
		now:           time.Now,
	}
}

func (s *PairingService) limiterFor(userID int64) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[userID]
	if !ok {
		l = rate.NewLimiter(inviteRateLimit, inviteRateBurst)
		s.limiters[userID] = l
	}
	return l
}

// IssueInvite generates a single-use invite token valid for 48 hours and
// returns it with a shareable link.
func (s *PairingService) IssueInvite(ctx context.Context, actor *domain.User, inviteType domain.InviteType) (*domain.Invite, string, error) {
	if !inviteType.Valid() {
		return nil, "", apperrors.InvalidInput("invite_type must be invite_therapist or invite_client")
	}
	if !s.limiterFor(actor.ID).Allow() {
		return nil, "", apperrors.InvalidInput("too many invites, try again later")
	}

	now := s.now()
	invite := &domain.Invite{
		Token:      strings.ReplaceAll(uuid.New().String(), "-", ""),
		InviterID:  actor.ID,
		InviteType: inviteType,
		ExpiresAt:  now.Add(domain.InviteTTL),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, "", fmt.Errorf("issue invite: %w", err)
	}

	s.logger.InfoContext(ctx, "invite issued",
		slog.Int64("inviter_id", actor.ID),
		slog.String("invite_type", string(inviteType)),
	)
	return invite, s.inviteLink(invite.Token), nil
}

func (s *PairingService) inviteLink(token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, token)
}

// PreviewInvite returns the inviter and expiry of a redeemable token. Absent,
// used and expired tokens are indistinguishable; all surface as not found.
func (s *PairingService) PreviewInvite(ctx context.Context, token string) (*InvitePreview, error) {
	invite, err := s.invites.GetValidByToken(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	inviter, err := s.users.GetByID(ctx, invite.InviterID)
	if err != nil {
		return nil, fmt.Errorf("load inviter: %w", err)
	}
	return &InvitePreview{
		InviterName: inviter.Name,
		InviteType:  invite.InviteType,
		ExpiresAt:   invite.ExpiresAt,
	}, nil
}

// RedeemInvite consumes the token and connects the two parties. Redeeming your
// own invite is forbidden. If the pair is already connected the call is a
// benign no-op returning the existing relationship. For invite_therapist the
// redeemer is promoted to the therapist role; for invite_client the inviter is
// the therapist and no promotion happens (the inviter's role is deliberately
// not checked, matching the established protocol).
func (s *PairingService) RedeemInvite(ctx context.Context, actor *domain.User, token string) (*domain.Relationship, error) {
	now := s.now()
	invite, err := s.invites.GetValidByToken(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if invite.InviterID == actor.ID {
		return nil, apperrors.Forbidden("cannot redeem your own invite")
	}

	var clientID, therapistID int64
	var promote bool
	if invite.InviteType == domain.InviteTherapist {
		clientID, therapistID = invite.InviterID, actor.ID
		promote = true
	} else {
		clientID, therapistID = actor.ID, invite.InviterID
	}

	existing, err := s.relationships.GetByPair(ctx, clientID, therapistID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing relationship: %w", err)
	}

	rel, err := s.relationships.CreateFromInvite(ctx, invite, clientID, therapistID, promote, now)
	if err != nil {
		return nil, err
	}
	if promote {
		actor.Role = domain.RoleTherapist
	}

	s.logger.InfoContext(ctx, "invite redeemed",
		slog.Int64("client_id", clientID),
		slog.Int64("therapist_id", therapistID),
	)
	return rel, nil
}

// Disconnect deletes a relationship. Only the two parties may do it; there is
// no server-side confirmation state.
func (s *PairingService) Disconnect(ctx context.Context, actor *domain.User, relationshipID int64) error {
	rel, err := s.relationships.GetByID(ctx, relationshipID)
	if err != nil {
		return err
	}
	if actor.ID != rel.ClientID && actor.ID != rel.TherapistID {
		return apperrors.Forbidden("not a party to this relationship")
	}
	if err := s.relationships.Delete(ctx, rel.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "relationship disconnected",
		slog.Int64("relationship_id", rel.ID),
		slog.Int64("actor_id", actor.ID),
	)
	return nil
}

// ListClients returns the therapist's connected clients ordered by name.
func (s *PairingService) ListClients(ctx context.Context, actor *domain.User) ([]domain.ConnectedClient, error) {
	if !actor.IsTherapist() {
		return nil, apperrors.Forbidden("only therapists have clients")
	}
	return s.relationships.ListClientsOf(ctx, actor.ID)
}

// GetTherapist returns the client's therapist, most recent connection first
// when more than one exists, or nil when the client has none.
func (s *PairingService) GetTherapist(ctx context.Context, actor *domain.User) (*domain.ConnectedClient, error) {
	therapists, err := s.relationships.ListTherapistsOf(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(therapists) == 0 {
		return nil, nil
	}
	return &therapists[0], nil
}
