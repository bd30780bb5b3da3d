package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/repository"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

// recordingNotifier captures sends so tests can wait for the background
// notification goroutine.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []int64
	done  chan struct{}
}

func newRecordingNotifier(expect int) *recordingNotifier {
	n := &recordingNotifier{done: make(chan struct{})}
	if expect == 0 {
		close(n.done)
	}
	return n
}

func (n *recordingNotifier) Send(ctx context.Context, recipientTelegramID int64, text, actionLink string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, recipientTelegramID)
	select {
	case <-n.done:
	default:
		close(n.done)
	}
	return nil
}

func (n *recordingNotifier) recipients() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.sends...)
}

func newJournalService(entries *mockEntryRepository, settings *mockSettingsRepository, rels *mockRelationshipRepository, n *recordingNotifier) *JournalService {
	return NewJournalService(entries, settings, NewAuthorizer(rels), n, "https://t.me/yourday_bot/app", newTestLogger())
}

func TestJournalCreate_NotifiesPerClientTherapists(t *testing.T) {
	entries := new(mockEntryRepository)
	settings := new(mockSettingsRepository)
	rels := new(mockRelationshipRepository)
	notif := newRecordingNotifier(1)
	svc := newJournalService(entries, settings, rels, notif)
	actor := clientUser()

	entries.On("Create", mock.Anything, mock.AnythingOfType("*domain.Entry")).Return(nil)
	settings.On("ListInstantNotifyTherapists", mock.Anything, actor.ID).
		Return([]repository.NotifyTarget{{UserID: 2, TelegramID: 222, Name: "Dr. Lee"}}, nil)

	entry, err := svc.Create(context.Background(), actor, CreateEntryInput{Text: "went for a walk", EntryDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, entry.UserID)

	select {
	case <-notif.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for therapist notification")
	}
	assert.Equal(t, []int64{222}, notif.recipients())
	entries.AssertExpectations(t)
}

func TestJournalCreate_Validation(t *testing.T) {
	svc := newJournalService(new(mockEntryRepository), new(mockSettingsRepository), new(mockRelationshipRepository), newRecordingNotifier(0))
	actor := clientUser()

	_, err := svc.Create(context.Background(), actor, CreateEntryInput{Text: "", EntryDate: "2025-06-01"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Create(context.Background(), actor, CreateEntryInput{Text: "hi", EntryDate: "01/06/2025"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestJournalGet_ClientNeverSeesTherapistFields(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := clientUser()

	comment := "private note"
	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{
		ID: 5, UserID: actor.ID, Text: "my day", TherapistComments: &comment, IsHighlighted: true,
	}, nil)

	entry, err := svc.Get(context.Background(), actor, 5)
	require.NoError(t, err)
	assert.Nil(t, entry.TherapistComments)
	assert.False(t, entry.IsHighlighted)
	assert.Equal(t, "my day", entry.Text)
}

func TestJournalGet_ConnectedTherapistSeesEverything(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := therapistUser()

	comment := "good progress"
	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{
		ID: 5, UserID: 1, Text: "my day", TherapistComments: &comment,
	}, nil)
	rels.On("GetByPair", mock.Anything, int64(1), actor.ID).
		Return(&domain.Relationship{ID: 10, ClientID: 1, TherapistID: actor.ID}, nil)

	entry, err := svc.Get(context.Background(), actor, 5)
	require.NoError(t, err)
	require.NotNil(t, entry.TherapistComments)
	assert.Equal(t, "good progress", *entry.TherapistComments)
}

func TestJournalGet_StrangerForbidden(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := strangerTherapist()

	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{ID: 5, UserID: 1, Text: "my day"}, nil)
	rels.On("GetByPair", mock.Anything, int64(1), actor.ID).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Get(context.Background(), actor, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestJournalUpdate_TherapistCannotEditText(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := therapistUser()

	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{ID: 5, UserID: 1, Text: "my day"}, nil)
	rels.On("GetByPair", mock.Anything, int64(1), actor.ID).
		Return(&domain.Relationship{ID: 10, ClientID: 1, TherapistID: actor.ID}, nil)

	_, err := svc.Update(context.Background(), actor, 5, UpdateEntryInput{Text: strPtr("rewritten")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestJournalUpdate_TherapistSetsAnnotationAndHighlight(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := therapistUser()

	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{ID: 5, UserID: 1, Text: "my day"}, nil)
	rels.On("GetByPair", mock.Anything, int64(1), actor.ID).
		Return(&domain.Relationship{ID: 10, ClientID: 1, TherapistID: actor.ID}, nil)
	entries.On("Update", mock.Anything, mock.AnythingOfType("*domain.Entry")).Return(nil)

	entry, err := svc.Update(context.Background(), actor, 5, UpdateEntryInput{
		TherapistComments: strPtr("well done"),
		IsHighlighted:     boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, entry.TherapistComments)
	assert.Equal(t, "well done", *entry.TherapistComments)
	assert.True(t, entry.IsHighlighted)
	assert.Equal(t, "my day", entry.Text)
}

func TestJournalUpdate_OwnerEditsTextSeesRedactedResult(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := clientUser()

	comment := "hidden"
	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{
		ID: 5, UserID: actor.ID, Text: "old", TherapistComments: &comment,
	}, nil)
	entries.On("Update", mock.Anything, mock.AnythingOfType("*domain.Entry")).Return(nil)

	entry, err := svc.Update(context.Background(), actor, 5, UpdateEntryInput{Text: strPtr("new text")})
	require.NoError(t, err)
	assert.Equal(t, "new text", entry.Text)
	assert.Nil(t, entry.TherapistComments)
}

func TestJournalDelete_OwnerOnly(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))

	entries.On("GetByID", mock.Anything, int64(5)).Return(&domain.Entry{ID: 5, UserID: 1}, nil)

	// Connected therapist still cannot delete.
	therapist := therapistUser()
	rels.On("GetByPair", mock.Anything, int64(1), therapist.ID).
		Return(&domain.Relationship{ID: 10, ClientID: 1, TherapistID: therapist.ID}, nil)
	err := svc.Delete(context.Background(), therapist, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	// Owner can.
	entries.On("Delete", mock.Anything, int64(5)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), clientUser(), 5))
}

func TestJournalList_MonthValidationAndCap(t *testing.T) {
	entries := new(mockEntryRepository)
	rels := new(mockRelationshipRepository)
	svc := newJournalService(entries, new(mockSettingsRepository), rels, newRecordingNotifier(0))
	actor := clientUser()

	_, err := svc.List(context.Background(), actor, 0, "June 2025", 10)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	entries.On("ListByOwner", mock.Anything, actor.ID, "2025-06", listEntriesCap).
		Return([]domain.Entry{}, nil)

	// An oversized limit is clamped to the cap.
	_, err = svc.List(context.Background(), actor, 0, "2025-06", 10000)
	require.NoError(t, err)
	entries.AssertExpectations(t)
}
