package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// Action is the kind of access being requested on a resource.
type Action int

const (
	// ActionRead views the resource.
	ActionRead Action = iota
	// ActionWriteClientFields edits client-authored fields (entry text,
	// client rating).
	ActionWriteClientFields
	// ActionWriteTherapistFields edits therapist-authored fields (annotation,
	// highlight flag, therapist rating).
	ActionWriteTherapistFields
	// ActionDelete removes the resource entirely.
	ActionDelete
)

// Decision is the outcome of an authorization check. RedactTherapistFields
// applies to reads only: the caller must strip therapist-authored fields from
// the response before returning it.
type Decision struct {
	Allowed               bool
	RedactTherapistFields bool
}

// Authorizer decides, for an actor and a resource owner, whether an action is
// allowed and what must be redacted. Every entry and rating path consults it;
// every actor/owner pair reaches exactly one of allowed or denied.
type Authorizer struct {
	relationships repository.RelationshipRepository
}

// NewAuthorizer creates a new authorization engine.
func NewAuthorizer(relationships repository.RelationshipRepository) *Authorizer {
	return &Authorizer{relationships: relationships}
}

// Authorize evaluates the access rules in order: owner first, then connected
// therapist, then denial. Owners always read their own data, with therapist
// fields redacted for client-role owners. A connected therapist reads
// everything and writes therapist fields only. Deletion is owner-only.
func (a *Authorizer) Authorize(ctx context.Context, actor *domain.User, resourceOwnerID int64, action Action) (Decision, error) {
	if actor.ID == resourceOwnerID {
		switch action {
		case ActionRead:
			return Decision{Allowed: true, RedactTherapistFields: actor.Role == domain.RoleClient}, nil
		case ActionWriteClientFields, ActionDelete:
			return Decision{Allowed: true}, nil
		case ActionWriteTherapistFields:
			return Decision{}, nil
		}
	}

	if actor.Role == domain.RoleTherapist {
		_, err := a.relationships.GetByPair(ctx, resourceOwnerID, actor.ID)
		switch {
		case err == nil:
			allowed := action == ActionRead || action == ActionWriteTherapistFields
			return Decision{Allowed: allowed}, nil
		case !errors.Is(err, apperrors.ErrNotFound):
			return Decision{}, fmt.Errorf("check relationship: %w", err)
		}
	}

	return Decision{}, nil
}
