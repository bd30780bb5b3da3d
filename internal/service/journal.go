package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/notifier"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

const maxEntryTextLen = 10000

// listEntriesCap bounds a single listing response.
const listEntriesCap = 100

// JournalService implements journal entry operations. Every read and write
// goes through the authorization engine; therapist-authored fields are
// redacted at view time for client-role owners.
type JournalService struct {
	entries    repository.EntryRepository
	settings   repository.SettingsRepository
	authorizer *Authorizer
	notifier   notifier.Notifier
	appLink    string
	logger     *slog.Logger
}

// NewJournalService creates a new journal service. appLink is attached to
// notifications as the Mini App button target.
func NewJournalService(
	entries repository.EntryRepository,
	settings repository.SettingsRepository,
	authorizer *Authorizer,
	n notifier.Notifier,
	appLink string,
	logger *slog.Logger,
) *JournalService {
	return &JournalService{
		entries:    entries,
		settings:   settings,
		authorizer: authorizer,
		notifier:   n,
		appLink:    appLink,
		logger:     logger,
	}
}

// CreateEntryInput holds the parameters for creating a journal entry.
type CreateEntryInput struct {
	Text      string `json:"text" validate:"required,max=10000"`
	EntryDate string `json:"entry_date" validate:"required,datetime=2006-01-02"`
}

// Create writes a new entry for the actor and notifies their connected
// per-client therapists in the background.
func (s *JournalService) Create(ctx context.Context, actor *domain.User, input CreateEntryInput) (*domain.Entry, error) {
	if input.Text == "" {
		return nil, apperrors.InvalidInput("text is required")
	}
	if len(input.Text) > maxEntryTextLen {
		return nil, apperrors.InvalidInput("text is too long")
	}
	if _, err := time.Parse("2006-01-02", input.EntryDate); err != nil {
		return nil, apperrors.InvalidInput("entry_date must be YYYY-MM-DD")
	}

	entry := &domain.Entry{
		UserID:    actor.ID,
		Text:      input.Text,
		EntryDate: input.EntryDate,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	// Notify connected therapists without blocking the request. The send
	// outcome is deliberately discarded: notification delivery is the one
	// place in the system where failures are swallowed.
	go s.notifyTherapists(context.WithoutCancel(ctx), actor)

	redacted := entry.Redacted()
	return &redacted, nil
}

func (s *JournalService) notifyTherapists(ctx context.Context, author *domain.User) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	targets, err := s.settings.ListInstantNotifyTherapists(ctx, author.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "load instant notify targets failed",
			slog.String("error", err.Error()),
		)
		return
	}
	for _, t := range targets {
		text := fmt.Sprintf("%s added a new journal entry.", author.Name)
		_ = s.notifier.Send(ctx, t.TelegramID, text, s.appLink)
	}
}

// Get returns one entry, redacted per the viewer's authorization decision.
func (s *JournalService) Get(ctx context.Context, actor *domain.User, entryID int64) (*domain.Entry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	decision, err := s.authorizer.Authorize(ctx, actor, entry.UserID, ActionRead)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperrors.Forbidden("no access to this entry")
	}
	if decision.RedactTherapistFields {
		redacted := entry.Redacted()
		return &redacted, nil
	}
	return entry, nil
}

// List returns the owner's entries visible to the actor, newest first. An
// ownerID of zero means the actor's own entries. month, when non-empty,
// filters to a YYYY-MM prefix.
func (s *JournalService) List(ctx context.Context, actor *domain.User, ownerID int64, month string, limit int) ([]domain.Entry, error) {
	if ownerID == 0 {
		ownerID = actor.ID
	}
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, apperrors.InvalidInput("month must be YYYY-MM")
		}
	}
	if limit <= 0 || limit > listEntriesCap {
		limit = listEntriesCap
	}

	decision, err := s.authorizer.Authorize(ctx, actor, ownerID, ActionRead)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperrors.Forbidden("no access to these entries")
	}

	entries, err := s.entries.ListByOwner(ctx, ownerID, month, limit)
	if err != nil {
		return nil, err
	}
	if decision.RedactTherapistFields {
		for i := range entries {
			entries[i] = entries[i].Redacted()
		}
	}
	return entries, nil
}

// UpdateEntryInput holds the optional fields of an entry update. Text is a
// client-authored field; the others are therapist-authored.
type UpdateEntryInput struct {
	Text              *string `json:"text" validate:"omitempty,max=10000"`
	TherapistComments *string `json:"therapist_comments"`
	IsHighlighted     *bool   `json:"is_highlighted"`
}

// Update edits an entry. The owner may change the text; a connected therapist
// may set the annotation and highlight flag but never the text.
func (s *JournalService) Update(ctx context.Context, actor *domain.User, entryID int64, input UpdateEntryInput) (*domain.Entry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if input.Text != nil {
		decision, err := s.authorizer.Authorize(ctx, actor, entry.UserID, ActionWriteClientFields)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, apperrors.Forbidden("cannot edit the entry text")
		}
		if *input.Text == "" {
			return nil, apperrors.InvalidInput("text cannot be empty")
		}
		if len(*input.Text) > maxEntryTextLen {
			return nil, apperrors.InvalidInput("text is too long")
		}
		entry.Text = *input.Text
	}

	if input.TherapistComments != nil || input.IsHighlighted != nil {
		decision, err := s.authorizer.Authorize(ctx, actor, entry.UserID, ActionWriteTherapistFields)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, apperrors.Forbidden("cannot edit therapist fields")
		}
		if input.TherapistComments != nil {
			entry.TherapistComments = input.TherapistComments
		}
		if input.IsHighlighted != nil {
			entry.IsHighlighted = *input.IsHighlighted
		}
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}

	decision, err := s.authorizer.Authorize(ctx, actor, entry.UserID, ActionRead)
	if err != nil {
		return nil, err
	}
	if decision.RedactTherapistFields {
		redacted := entry.Redacted()
		return &redacted, nil
	}
	return entry, nil
}

// Delete removes an entry. Owner-only regardless of role.
func (s *JournalService) Delete(ctx context.Context, actor *domain.User, entryID int64) error {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	decision, err := s.authorizer.Authorize(ctx, actor, entry.UserID, ActionDelete)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return apperrors.Forbidden("only the owner can delete an entry")
	}
	return s.entries.Delete(ctx, entry.ID)
}
