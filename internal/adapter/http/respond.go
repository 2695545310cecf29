package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/app/auth"
	"github.com/YelzhanWeb/cafe/internal/domain"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error  string                   `json:"error"`
	Errors []domain.ValidationError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, message string, status int, validationErrors []domain.ValidationError) {
	writeJSON(w, status, ErrorResponse{Error: message, Errors: validationErrors})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrCheckoutState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrQuantityLimit),
		errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, domain.ErrInvalidOrderType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError logs server faults and hides their text from the client.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(action, "Request failed", logger.RequestID(r.Context()), map[string]interface{}{"path": r.URL.Path}, err)
		respondError(w, "Internal server error", status, nil)
		return
	}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(w, "Validation failed", status, verrs)
		return
	}
	respondError(w, err.Error(), status, nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		respondError(w, fmt.Sprintf("invalid id %q", r.PathValue("id")), http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}
