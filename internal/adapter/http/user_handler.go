package http

import (
	"net/http"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

type UserHandler struct {
	service interfaces.UserService
	logger  logger.Logger
}

func NewUserHandler(service interfaces.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "users_list_failed", err)
		return
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Role domain.Role `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	claims, _ := ClaimsFrom(r.Context())
	if err := h.service.SetRole(r.Context(), claims.UserID, id, req.Role); err != nil {
		writeError(w, r, h.logger, "user_role_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		respondError(w, "Validation failed", http.StatusBadRequest,
			[]domain.ValidationError{{Field: "isActive", Message: "isActive is required"}})
		return
	}

	claims, _ := ClaimsFrom(r.Context())
	if err := h.service.SetActive(r.Context(), claims.UserID, id, *req.IsActive); err != nil {
		writeError(w, r, h.logger, "user_active_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
