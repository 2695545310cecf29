package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerInfo_Validate(t *testing.T) {
	valid := CustomerInfo{Name: "Asha", Email: "asha@example.com", Phone: "+91 98765 43210"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(c *CustomerInfo)
		field   string
		message string
	}{
		{"missing name", func(c *CustomerInfo) { c.Name = "  " }, "name", "name is required"},
		{"long name", func(c *CustomerInfo) { c.Name = strings.Repeat("a", 101) }, "name", "name must not exceed 100 characters"},
		{"missing email", func(c *CustomerInfo) { c.Email = "" }, "email", "email is required"},
		{"malformed email", func(c *CustomerInfo) { c.Email = "asha@example" }, "email", "please enter email in proper manner"},
		{"short tld", func(c *CustomerInfo) { c.Email = "asha@example.c" }, "email", "please enter email in proper manner"},
		{"missing phone", func(c *CustomerInfo) { c.Phone = "" }, "phone", "phone is required"},
		{"letters in phone", func(c *CustomerInfo) { c.Phone = "555-CAFE" }, "phone", "phone must contain 7-15 digits"},
		{"too few digits", func(c *CustomerInfo) { c.Phone = "12345" }, "phone", "phone must contain 7-15 digits"},
		{"long instructions", func(c *CustomerInfo) { c.SpecialInstructions = strings.Repeat("x", 501) }, "specialInstructions", "special instructions cannot exceed 500 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)

			var verrs ValidationErrors
			require.True(t, errors.As(c.Validate(), &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Equal(t, tt.message, verrs[0].Message)
		})
	}
}

func TestCustomerInfo_Normalized(t *testing.T) {
	c := CustomerInfo{Name: " Asha ", Email: " Asha@Example.COM ", Phone: " 5551234 "}.Normalized()
	assert.Equal(t, "Asha", c.Name)
	assert.Equal(t, "asha@example.com", c.Email)
	assert.Equal(t, "5551234", c.Phone)
}

func TestValidationErrors_ErrNilWhenEmpty(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("name", "required")
	assert.EqualError(t, errs.Err(), "validation failed: name: required")
}
