package menu

import (
	"fmt"
	"io"

	"github.com/YelzhanWeb/cafe/internal/domain"
)

// RenderTable writes items as a fixed-width text table.
func RenderTable(w io.Writer, items []domain.MenuItem) error {
	if _, err := fmt.Fprintf(w, "%-24s %-10s %10s  %s\n", "NAME", "CATEGORY", "PRICE", "AVAILABLE"); err != nil {
		return err
	}
	for _, it := range items {
		price := "-"
		if it.Price.Valid {
			price = it.Price.Decimal.StringFixed(2)
		}
		avail := "yes"
		if !it.Available() {
			avail = "no"
		}
		if _, err := fmt.Fprintf(w, "%-24s %-10s %10s  %s\n", it.Name, it.CategoryName(), price, avail); err != nil {
			return err
		}
	}
	return nil
}
