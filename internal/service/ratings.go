package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// listRatingsCap bounds a single listing response.
const listRatingsCap = 60

// RatingService implements per-day rating reads and upserts. The client and
// the connected therapist each write their own side of a day's rating.
type RatingService struct {
	ratings    repository.RatingRepository
	authorizer *Authorizer
	logger     *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(ratings repository.RatingRepository, authorizer *Authorizer, logger *slog.Logger) *RatingService {
	return &RatingService{ratings: ratings, authorizer: authorizer, logger: logger}
}

// UpsertRatingInput holds the parameters for setting a day's rating.
type UpsertRatingInput struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// Upsert sets the actor's side of the rating for the given owner and date.
// When the actor is the owner the client side is written; a connected
// therapist writes the therapist side. Repeated writes overwrite in place.
func (s *RatingService) Upsert(ctx context.Context, actor *domain.User, ownerID int64, input UpsertRatingInput) (*domain.DayRating, error) {
	if ownerID == 0 {
		ownerID = actor.ID
	}
	if !domain.ValidRating(input.Rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return nil, apperrors.InvalidInput("date must be YYYY-MM-DD")
	}

	if actor.ID == ownerID {
		decision, err := s.authorizer.Authorize(ctx, actor, ownerID, ActionWriteClientFields)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, apperrors.Forbidden("cannot rate this day")
		}
		rating, err := s.ratings.UpsertClientRating(ctx, ownerID, input.Date, input.Rating)
		if err != nil {
			return nil, err
		}
		return s.redactForViewer(ctx, actor, rating)
	}

	decision, err := s.authorizer.Authorize(ctx, actor, ownerID, ActionWriteTherapistFields)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperrors.Forbidden("cannot rate this day")
	}
	return s.ratings.UpsertTherapistRating(ctx, ownerID, input.Date, input.Rating)
}

// List returns the owner's ratings visible to the actor, newest first. An
// ownerID of zero means the actor's own ratings.
func (s *RatingService) List(ctx context.Context, actor *domain.User, ownerID int64, month string, limit int) ([]domain.DayRating, error) {
	if ownerID == 0 {
		ownerID = actor.ID
	}
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, apperrors.InvalidInput("month must be YYYY-MM")
		}
	}
	if limit <= 0 || limit > listRatingsCap {
		limit = listRatingsCap
	}

	decision, err := s.authorizer.Authorize(ctx, actor, ownerID, ActionRead)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperrors.Forbidden("no access to these ratings")
	}

	ratings, err := s.ratings.ListByOwner(ctx, ownerID, month, limit)
	if err != nil {
		return nil, err
	}
	if decision.RedactTherapistFields {
		for i := range ratings {
			ratings[i] = ratings[i].Redacted()
		}
	}
	return ratings, nil
}

func (s *RatingService) redactForViewer(ctx context.Context, actor *domain.User, rating *domain.DayRating) (*domain.DayRating, error) {
	decision, err := s.authorizer.Authorize(ctx, actor, rating.UserID, ActionRead)
	if err != nil {
		return nil, err
	}
	if decision.RedactTherapistFields {
		redacted := rating.Redacted()
		return &redacted, nil
	}
	return rating, nil
}
