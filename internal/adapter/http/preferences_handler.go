package http

import (
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/app/preferences"
	"github.com/YelzhanWeb/cafe/internal/domain"
)

type PreferencesHandler struct {
	service *preferences.Service
	logger  logger.Logger
}

func NewPreferencesHandler(service *preferences.Service, logger logger.Logger) *PreferencesHandler {
	return &PreferencesHandler{service: service, logger: logger}
}

type UpdatePreferencesRequest struct {
	Theme    *domain.Theme `json:"theme,omitempty"`
	LastView *string       `json:"lastView,omitempty"`
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, h.service.Get(r.Context(), strconv.Itoa(claims.UserID), claims.Role))
}

func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	user := strconv.Itoa(claims.UserID)

	var req UpdatePreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Theme != nil {
		if err := h.service.SetTheme(r.Context(), user, *req.Theme); err != nil {
			writeError(w, r, h.logger, "preferences_update_failed", err)
			return
		}
	}
	if req.LastView != nil {
		if err := h.service.SetLastView(r.Context(), user, *req.LastView); err != nil {
			writeError(w, r, h.logger, "preferences_update_failed", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.service.Get(r.Context(), user, claims.Role))
}
