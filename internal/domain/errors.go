package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidOrderType        = errors.New("invalid order type")
	ErrItemUnavailable         = errors.New("item is not available")
	ErrQuantityLimit           = errors.New("quantity limit exceeded")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrCheckoutState           = errors.New("checkout is not open")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUserExists              = errors.New("user already exists")
	ErrForbidden               = errors.New("forbidden")
	ErrDuplicate               = errors.New("duplicate record")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field errors; a nil or empty value means valid.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Field + ": " + e.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns v as an error, or nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
