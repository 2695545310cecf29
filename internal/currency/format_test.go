package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_INR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"289", "₹289.00"},
		{"578", "₹578.00"},
		{"0", "₹0.00"},
		{"1000", "₹1,000.00"},
		{"12.345", "₹12.35"},
		{"-5", "-₹5.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, INR.Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestNew_RejectsUnknownCurrency(t *testing.T) {
	_, err := New("XYZ1", "en-IN")
	require.Error(t, err)

	_, err = New("INR", "not a locale!")
	require.Error(t, err)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "₹", INR.Symbol())
}
