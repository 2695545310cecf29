package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

type AuthHandler struct {
	service interfaces.AuthService
	logger  logger.Logger
}

func NewAuthHandler(service interfaces.AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID          int         `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"isActive"`
	LastLoginAt *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, "register_failed", err)
		return
	}

	h.logger.Info("user_registered", "User registered", logger.RequestID(r.Context()), map[string]interface{}{
		"user_id": user.ID,
	})
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, "login_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	user, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, h.logger, "me_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
