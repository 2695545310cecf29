package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// MenuItem is a storefront menu record. Pointer, slice and map fields keep the
// difference between "not provided" (nil) and "deliberately empty", which the
// catalog merge depends on.
type MenuItem struct {
	ID          ID                  `json:"id,omitempty"`
	StoreID     ID                  `json:"_id,omitempty"`
	Name        string              `json:"name"`
	Price       decimal.NullDecimal `json:"price"`
	Category    *string             `json:"category,omitempty"`
	Image       *string             `json:"image,omitempty"`
	Description *string             `json:"description,omitempty"`
	IsAvailable *bool               `json:"isAvailable,omitempty"`
	PrepTime    *string             `json:"prepTime,omitempty"`
	Ingredients []string            `json:"ingredients"`
	Nutrition   map[string]string   `json:"nutrition"`
}

func (m MenuItem) Identity() (ID, bool) {
	return IdentityOf(m.ID, m.StoreID)
}

// Available treats a missing flag as available; only an explicit false hides
// the item.
func (m MenuItem) Available() bool {
	return m.IsAvailable == nil || *m.IsAvailable
}

func (m MenuItem) CategoryName() string {
	if m.Category == nil {
		return ""
	}
	return *m.Category
}

func (m MenuItem) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}

func (m MenuItem) ImageURL() string {
	if m.Image == nil {
		return ""
	}
	return *m.Image
}

// Clone returns a deep copy so callers can mutate the result freely.
func (m MenuItem) Clone() MenuItem {
	out := m
	out.Category = cloneString(m.Category)
	out.Image = cloneString(m.Image)
	out.Description = cloneString(m.Description)
	out.PrepTime = cloneString(m.PrepTime)
	if m.IsAvailable != nil {
		v := *m.IsAvailable
		out.IsAvailable = &v
	}
	if m.Ingredients != nil {
		out.Ingredients = append([]string{}, m.Ingredients...)
	}
	if m.Nutrition != nil {
		out.Nutrition = make(map[string]string, len(m.Nutrition))
		for k, v := range m.Nutrition {
			out.Nutrition[k] = v
		}
	}
	return out
}

// Overlay returns a copy of m with every field that over sets replacing the
// corresponding field of m. Unset (nil or empty-identity) fields of over are
// ignored; empty but non-nil values are applied.
func (m MenuItem) Overlay(over MenuItem) MenuItem {
	out := m.Clone()
	o := over.Clone()

	if o.ID != "" {
		out.ID = o.ID
	}
	if o.StoreID != "" {
		out.StoreID = o.StoreID
	}
	if o.Name != "" {
		out.Name = o.Name
	}
	if o.Price.Valid {
		out.Price = o.Price
	}
	if o.Category != nil {
		out.Category = o.Category
	}
	if o.Image != nil {
		out.Image = o.Image
	}
	if o.Description != nil {
		out.Description = o.Description
	}
	if o.IsAvailable != nil {
		out.IsAvailable = o.IsAvailable
	}
	if o.PrepTime != nil {
		out.PrepTime = o.PrepTime
	}
	if o.Ingredients != nil {
		out.Ingredients = o.Ingredients
	}
	if o.Nutrition != nil {
		out.Nutrition = o.Nutrition
	}
	return out
}

// NameKey is the de-duplication key for menu records: NFC-normalized,
// trimmed and lower-cased.
func NameKey(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}

// StringPtr and BoolPtr are small helpers for building optional fields.
func StringPtr(s string) *string { return &s }

func BoolPtr(b bool) *bool { return &b }

// Price wraps a decimal into a defined menu price.
func Price(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
