package http

import (
	"log/slog"
	"net/http"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/httputil"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/validator"
)

// SettingsHandler serves the notification settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings *service.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// Get handles GET /api/v1/notifications/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	settings, err := h.settings.Get(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// Update handles PUT /api/v1/notifications/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var input service.UpdateSettingsInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), actor, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// Me handles GET /api/v1/me, returning the authenticated user's profile.
func Me(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: actor})
	}
}
