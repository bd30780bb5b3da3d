package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/httputil"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/validator"
)

// RelationshipHandler serves the invite and relationship endpoints.
type RelationshipHandler struct {
	pairing *service.PairingService
	logger  *slog.Logger
}

// NewRelationshipHandler creates a new relationship handler.
func NewRelationshipHandler(pairing *service.PairingService, logger *slog.Logger) *RelationshipHandler {
	return &RelationshipHandler{pairing: pairing, logger: logger}
}

type createInviteRequest struct {
	InviteType string `json:"invite_type" validate:"required,oneof=invite_therapist invite_client"`
}

type inviteResponse struct {
	Token      string `json:"token"`
	InviteType string `json:"invite_type"`
	Link       string `json:"link"`
	ExpiresAt  string `json:"expires_at"`
}

// CreateInvite handles POST /api/v1/relationships/invite.
func (h *RelationshipHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createInviteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	invite, link, err := h.pairing.IssueInvite(r.Context(), actor, domain.InviteType(req.InviteType))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: inviteResponse{
		Token:      invite.Token,
		InviteType: string(invite.InviteType),
		Link:       link,
		ExpiresAt:  invite.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}})
}

// PreviewInvite handles GET /api/v1/relationships/invite/{token}.
func (h *RelationshipHandler) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	preview, err := h.pairing.PreviewInvite(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: preview})
}

// RedeemInvite handles POST /api/v1/relationships/invite/{token}/redeem.
func (h *RelationshipHandler) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	rel, err := h.pairing.RedeemInvite(r.Context(), actor, chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rel})
}

// Disconnect handles DELETE /api/v1/relationships/{id}.
func (h *RelationshipHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, r, apperrors.InvalidInput("id must be a positive integer"), h.logger)
		return
	}

	if err := h.pairing.Disconnect(r.Context(), actor, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClients handles GET /api/v1/relationships/clients.
func (h *RelationshipHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	clients, err := h.pairing.ListClients(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: clients})
}

// GetTherapist handles GET /api/v1/relationships/therapist. The data field
// is null when the client has no connected therapist.
func (h *RelationshipHandler) GetTherapist(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	therapist, err := h.pairing.GetTherapist(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: therapist})
}
