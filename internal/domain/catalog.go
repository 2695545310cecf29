package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog categories accepted by the server-side menu.
var CatalogCategories = []string{"coffee", "tea", "pastry", "sandwich", "salad", "dessert", "beverage", "snack"}

const DefaultMenuImage = "/images/default-food.jpg"

var maxMenuPrice = decimal.NewFromInt(10000)

// CatalogFilter narrows menu listings. Empty fields and "all" match everything.
type CatalogFilter struct {
	Category     string
	Search       string
	Availability string // "all", "available", "unavailable"
}

func (f CatalogFilter) Matches(item MenuItem) bool {
	if f.Category != "" && f.Category != "all" && item.CategoryName() != f.Category {
		return false
	}

	switch f.Availability {
	case "available":
		if !item.Available() {
			return false
		}
	case "unavailable":
		if item.Available() {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		name := strings.ToLower(item.Name)
		desc := strings.ToLower(item.DescriptionText())
		if !strings.Contains(name, q) && !strings.Contains(desc, q) {
			return false
		}
	}
	return true
}

func validCategory(c string) bool {
	for _, v := range CatalogCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidateCatalogItem applies the server menu rules: required name,
// description, price and category, with length and range limits.
func ValidateCatalogItem(item MenuItem) error {
	var errs ValidationErrors

	name := strings.TrimSpace(item.Name)
	if name == "" {
		errs.Add("name", "menu item name is required")
	} else if len(name) > 100 {
		errs.Add("name", "name cannot exceed 100 characters")
	}

	desc := strings.TrimSpace(item.DescriptionText())
	if desc == "" {
		errs.Add("description", "description is required")
	} else if len(desc) > 500 {
		errs.Add("description", "description cannot exceed 500 characters")
	}

	switch {
	case !item.Price.Valid:
		errs.Add("price", "price is required")
	case item.Price.Decimal.IsNegative():
		errs.Add("price", "price cannot be negative")
	case item.Price.Decimal.GreaterThan(maxMenuPrice):
		errs.Add("price", "price cannot exceed 10000")
	}

	if item.Category == nil || strings.TrimSpace(*item.Category) == "" {
		errs.Add("category", "category is required")
	} else if !validCategory(*item.Category) {
		errs.Add("category", "category must be one of: "+strings.Join(CatalogCategories, ", "))
	}

	return errs.Err()
}

var scriptTag = regexp.MustCompile(`(?is)<script\b.*?</script>`)

// StripScripts removes <script> blocks from user supplied text.
func StripScripts(s string) string {
	return scriptTag.ReplaceAllString(s, "")
}

// Sanitized trims text fields, strips script blocks and applies defaults
// for a catalog write.
func (m MenuItem) Sanitized() MenuItem {
	out := m.Clone()
	out.Name = strings.TrimSpace(StripScripts(out.Name))
	if out.Description != nil {
		out.Description = StringPtr(strings.TrimSpace(StripScripts(*out.Description)))
	}
	if out.Category != nil {
		out.Category = StringPtr(strings.ToLower(strings.TrimSpace(*out.Category)))
	}
	if out.Image == nil || strings.TrimSpace(*out.Image) == "" {
		out.Image = StringPtr(DefaultMenuImage)
	}
	if out.IsAvailable == nil {
		out.IsAvailable = BoolPtr(true)
	}
	for i, ing := range out.Ingredients {
		out.Ingredients[i] = strings.TrimSpace(StripScripts(ing))
	}
	return out
}
