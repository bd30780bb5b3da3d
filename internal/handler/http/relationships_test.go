package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
)

func TestCreateInvite(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	f.invites.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invite")).Return(nil)

	rec := f.doJSON(t, user, http.MethodPost, "/api/v1/relationships/invite", map[string]any{
		"invite_type": "invite_therapist",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Data inviteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data.Token, 32)
	assert.Equal(t, "invite_therapist", body.Data.InviteType)
	assert.Contains(t, body.Data.Link, "https://t.me/yourday_bot?start=")
}

func TestCreateInvite_UnknownType(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	rec := f.doJSON(t, user, http.MethodPost, "/api/v1/relationships/invite", map[string]any{
		"invite_type": "invite_everyone",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.invites.AssertNotCalled(t, "Create")
}

func TestPreviewInvite_UnknownToken(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	f.invites.On("GetValidByToken", mock.Anything, "nosuchtoken", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound)

	rec := f.doJSON(t, user, http.MethodGet, "/api/v1/relationships/invite/nosuchtoken", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedeemInvite_OwnInviteForbidden(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	f.invites.On("GetValidByToken", mock.Anything, "tok", mock.AnythingOfType("time.Time")).
		Return(&domain.Invite{
			Token:      "tok",
			InviterID:  user.ID,
			InviteType: domain.InviteTherapist,
			ExpiresAt:  time.Now().Add(time.Hour),
		}, nil)

	rec := f.doJSON(t, user, http.MethodPost, "/api/v1/relationships/invite/tok/redeem", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRedeemInvite_ConnectsPair(t *testing.T) {
	f := newFixture("development")
	redeemer := f.asUser(devClient())

	invite := &domain.Invite{
		ID:         3,
		Token:      "tok",
		InviterID:  50,
		InviteType: domain.InviteTherapist,
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	f.invites.On("GetValidByToken", mock.Anything, "tok", mock.AnythingOfType("time.Time")).
		Return(invite, nil)
	f.relationships.On("GetByPair", mock.Anything, int64(50), redeemer.ID).
		Return(nil, apperrors.ErrNotFound)
	f.relationships.On("CreateFromInvite", mock.Anything, invite, int64(50), redeemer.ID, true, mock.AnythingOfType("time.Time")).
		Return(&domain.Relationship{ID: 77, ClientID: 50, TherapistID: redeemer.ID}, nil)

	rec := f.doJSON(t, redeemer, http.MethodPost, "/api/v1/relationships/invite/tok/redeem", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data domain.Relationship `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(77), body.Data.ID)
}

func TestListClients_ClientForbidden(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	rec := f.doJSON(t, user, http.MethodGet, "/api/v1/relationships/clients", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetTherapist_NoneConnected(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	f.relationships.On("ListTherapistsOf", mock.Anything, user.ID).
		Return([]domain.ConnectedClient{}, nil)

	rec := f.doJSON(t, user, http.MethodGet, "/api/v1/relationships/therapist", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data *domain.ConnectedClient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
}

func TestDisconnect_PartyOnly(t *testing.T) {
	f := newFixture("development")
	user := f.asUser(devClient())

	f.relationships.On("GetByID", mock.Anything, int64(9)).
		Return(&domain.Relationship{ID: 9, ClientID: 30, TherapistID: 40}, nil)

	rec := f.doJSON(t, user, http.MethodDelete, "/api/v1/relationships/9", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.relationships.AssertNotCalled(t, "Delete")
}
