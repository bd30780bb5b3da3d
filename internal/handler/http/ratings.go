package http

import (
	"log/slog"
	"net/http"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/httputil"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/validator"
)

// RatingHandler serves the day rating endpoints.
type RatingHandler struct {
	ratings *service.RatingService
	logger  *slog.Logger
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(ratings *service.RatingService, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{ratings: ratings, logger: logger}
}

// Upsert handles POST /api/v1/ratings. A client_id query parameter lets a
// connected therapist write their side of a client's day.
func (h *RatingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	ownerID, err := queryInt64(r, "client_id")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("client_id must be an integer"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var input service.UpsertRatingInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rating, err := h.ratings.Upsert(r.Context(), actor, ownerID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rating})
}

// List handles GET /api/v1/ratings.
func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	ownerID, err := queryInt64(r, "client_id")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("client_id must be an integer"), h.logger)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("limit must be an integer"), h.logger)
		return
	}

	ratings, err := h.ratings.List(r.Context(), actor, ownerID, r.URL.Query().Get("month"), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ratings})
}
