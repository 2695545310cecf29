package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInfo is what the checkout form collects.
type CustomerInfo struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Summary holds the derived checkout amounts.
type Summary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	ItemCount int             `json:"itemCount"`
}

// OrderDraft exists only between checkout submit and hand-off to the order
// submitter.
type OrderDraft struct {
	Customer  CustomerInfo `json:"customer"`
	Lines     []CartLine   `json:"lines"`
	Summary   Summary      `json:"summary"`
	CreatedAt time.Time    `json:"createdAt"`
}

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`)
)

// ValidEmail applies the storefront's email syntax check.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidPhone accepts 7 to 15 digits with optional leading + and
// space or dash separators.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phoneRegex.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// Validate checks the required checkout fields.
func (c CustomerInfo) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.Name) == "" {
		errs.Add("name", "name is required")
	} else if len(c.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	if strings.TrimSpace(c.Email) == "" {
		errs.Add("email", "email is required")
	} else if !ValidEmail(c.Email) {
		errs.Add("email", "please enter email in proper manner")
	}

	if strings.TrimSpace(c.Phone) == "" {
		errs.Add("phone", "phone is required")
	} else if !ValidPhone(c.Phone) {
		errs.Add("phone", "phone must contain 7-15 digits")
	}

	if len(c.SpecialInstructions) > 500 {
		errs.Add("specialInstructions", "special instructions cannot exceed 500 characters")
	}

	return errs.Err()
}

// Normalized trims all fields.
func (c CustomerInfo) Normalized() CustomerInfo {
	return CustomerInfo{
		Name:                strings.TrimSpace(c.Name),
		Email:               strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:               strings.TrimSpace(c.Phone),
		SpecialInstructions: strings.TrimSpace(c.SpecialInstructions),
	}
}
