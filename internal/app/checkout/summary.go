package checkout

import (
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
)

// Summarize derives subtotal, tax and total from cart lines. Tax is rounded
// half-up to two places.
func Summarize(lines []domain.CartLine, taxRate decimal.Decimal) domain.Summary {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
		count += l.Quantity
	}
	tax := domain.TaxOn(subtotal, taxRate)
	return domain.Summary{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		TaxRate:   taxRate,
		ItemCount: count,
	}
}
